package models

import "fmt"

// PayloadType is the MyGet webhook discriminator carried in "PayloadType"
type PayloadType string

const (
	PackageAdded   PayloadType = "PackageAddedWebHookEventPayloadV1"
	PackageDeleted PayloadType = "PackageDeletedWebHookEventPayloadV1"
	PackageListed  PayloadType = "PackageListedWebHookEventPayloadV1"
	PackagePinned  PayloadType = "PackagePinnedWebHookEventPayloadV1"
	PackagePushed  PayloadType = "PackagePushedWebHookEventPayloadV1"
	BuildQueued    PayloadType = "BuildQueuedWebHookEventPayloadV1"
	BuildStarted   PayloadType = "BuildStartedWebHookEventPayloadV1"
	BuildFinished  PayloadType = "BuildFinishedWebHookEventPayloadV1"
)

var knownPayloadTypes = []PayloadType{
	PackageAdded,
	PackageDeleted,
	PackageListed,
	PackagePinned,
	PackagePushed,
	BuildQueued,
	BuildStarted,
	BuildFinished,
}

// ParsePayloadType parses a string into a PayloadType
// Returns an error if the payload type is unknown. Matching is exact:
// no trimming and no case folding, the same comparison the trigger uses.
func ParsePayloadType(name string) (PayloadType, error) {
	for _, payloadType := range knownPayloadTypes {
		if string(payloadType) == name {
			return payloadType, nil
		}
	}

	return "", fmt.Errorf("unknown payload type: %q", name)
}
