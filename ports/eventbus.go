package ports

type Topic = string
type Event = []string
type EventBus interface {
	Shutdown()
	Pub(Topic, Event)
	Sub(Topic) chan Event
	Unsub(chan Event)
}

// The watcher service publishes "<id>-file-modified" and "<id>-file-removed".
// The config watcher is created with id "config".
const (
	TopicConfigFileModified Topic = "config-file-modified"
	TopicConfigFileRemoved  Topic = "config-file-removed"
)
