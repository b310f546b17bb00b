// Package publisher defines the release notification contract.
package publisher

import "context"

// Topic carrying release-detected events.
const TopicReleases = "windows-releases"

// Publisher emits release-detected events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}
