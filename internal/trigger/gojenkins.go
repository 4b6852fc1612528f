package trigger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bndr/gojenkins"
)

// jenkinsAPI is what the client needs from Jenkins
type jenkinsAPI interface {
	Init(ctx context.Context) error
	ServerInfo(ctx context.Context) (*gojenkins.ExecutorResponse, error)
	BuildWithParameters(ctx context.Context, jobPath string, params map[string]string) (int64, error)
}

// requesterAPI goes through gojenkins' Requester (auth, crumb issuer) but
// never through Job.InvokeSimple, which skips jobs that are already queued
// and drops parameters for jobs without parameter definitions
type requesterAPI struct {
	jenkins *gojenkins.Jenkins
}

func (a *requesterAPI) Init(ctx context.Context) error {
	_, err := a.jenkins.Init(ctx)
	return err
}

// ServerInfo decodes into a fresh struct; Jenkins.Info writes shared state
func (a *requesterAPI) ServerInfo(ctx context.Context) (*gojenkins.ExecutorResponse, error) {
	info := new(gojenkins.ExecutorResponse)
	resp, err := a.jenkins.Requester.GetJSON(ctx, "/", info, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jenkins answered HTTP %d", resp.StatusCode)
	}
	return info, nil
}

func (a *requesterAPI) BuildWithParameters(ctx context.Context, jobPath string, params map[string]string) (int64, error) {
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	endpoint := "/job/" + jobPath + "/buildWithParameters"
	resp, err := a.jenkins.Requester.Post(ctx, endpoint, strings.NewReader(form.Encode()), nil, nil)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("build request answered HTTP %d", resp.StatusCode)
	}

	return QueueID(resp.Header.Get("Location"))
}

// QueueID extracts the queue item id from a build response Location
// header, e.g. "https://ci/queue/item/123/"
func QueueID(location string) (int64, error) {
	if location == "" {
		return 0, errors.New("build response has no Location header")
	}

	u, err := url.Parse(location)
	if err != nil {
		return 0, fmt.Errorf("invalid Location header %q: %w", location, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	n := len(parts)
	if n < 3 || parts[n-3] != "queue" || parts[n-2] != "item" {
		return 0, fmt.Errorf("Location header %q is not a queue item", location)
	}

	id, err := strconv.ParseInt(parts[n-1], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("Location header %q has no queue id", location)
	}
	return id, nil
}
