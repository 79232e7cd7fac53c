package mqtt

import (
	"encoding/json"

	"github.com/robotalks/gyrodrive/pkg/motion/msgs"
)

// Watcher decodes the messages published by robots.
type Watcher struct {
	OnMotion func(robotID string, state *msgs.MotionState)
	// OnMeta receives nil meta when a robot goes offline.
	OnMeta  func(robotID string, meta *msgs.RobotMeta)
	OnError func(topic string, err error)
}

// Watch subscribes to the topics of all robots on q.
func (w *Watcher) Watch(q *Queue) []*Subscription {
	return []*Subscription{
		q.Sub("+/"+TopicMotion, w.HandleMessage),
		q.Sub("+/"+TopicMeta, w.HandleMessage),
	}
}

// HandleMessage decodes a message by its topic.
func (w *Watcher) HandleMessage(topic string, payload []byte) {
	robotID, sub := SplitTopic(topic)
	switch sub {
	case TopicMotion:
		state, err := msgs.DecodeMotionState(payload)
		if err != nil {
			w.fail(topic, err)
			return
		}
		if w.OnMotion != nil {
			w.OnMotion(robotID, state)
		}
	case TopicMeta:
		var meta *msgs.RobotMeta
		if len(payload) > 0 {
			meta = &msgs.RobotMeta{}
			if err := json.Unmarshal(payload, meta); err != nil {
				w.fail(topic, err)
				return
			}
		}
		if w.OnMeta != nil {
			w.OnMeta(robotID, meta)
		}
	}
}

func (w *Watcher) fail(topic string, err error) {
	if w.OnError != nil {
		w.OnError(topic, err)
	}
}
