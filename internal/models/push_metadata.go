package models

// PushMetadata is the typed view of a package-added webhook, as handed to
// the build job in PUSH_METADATA
type PushMetadata struct {
	Identifier  string         `json:"Identifier"`
	Username    string         `json:"Username"`
	When        string         `json:"When"`
	PayloadType PayloadType    `json:"PayloadType"`
	Payload     PackagePayload `json:"Payload"`
}

type PackagePayload struct {
	PackageType       string `json:"PackageType"`
	PackageIdentifier string `json:"PackageIdentifier"`
	PackageVersion    string `json:"PackageVersion"`
	FeedIdentifier    string `json:"FeedIdentifier"`
	FeedUrl           string `json:"FeedUrl"`
}

// FeedState is the response of <feed>/api/v2/feed-state
type FeedState struct {
	Packages []FeedPackage `json:"packages"`
}

type FeedPackage struct {
	ID       string   `json:"id"`
	Versions []string `json:"versions"`
}
