package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/gyrodrive/internal/syncutil"
	"github.com/robotalks/gyrodrive/pkg/ble/frame"
	"github.com/robotalks/gyrodrive/pkg/motion"
	"github.com/robotalks/gyrodrive/pkg/motion/msgs"
)

// Topics under <prefix><robot-id>/.
const (
	TopicMotion = "motion"
	TopicMeta   = "meta"
)

// DefaultReconnectInterval is the wait between failed initial connects.
const DefaultReconnectInterval = 5 * time.Second

// MotionTopic is the topic of the motion state of a robot.
func MotionTopic(robotID string) string {
	return robotID + "/" + TopicMotion
}

// MetaTopic is the topic of the meta of a robot.
func MetaTopic(robotID string) string {
	return robotID + "/" + TopicMeta
}

// SplitTopic extracts robot ID and the sub topic.
func SplitTopic(topic string) (robotID, sub string) {
	pos := strings.LastIndex(topic, "/")
	if pos < 0 {
		return "", topic
	}
	return topic[:pos], topic[pos+1:]
}

// Broker publishes payloads.
type Broker interface {
	Publish(topic string, payload []byte, retain bool) error
}

// Publisher is an Actuator publishing MotionState when commands change.
type Publisher struct {
	Broker  Broker
	RobotID string
	Meta    msgs.RobotMeta
	// Queue is connected by Run, optional.
	Queue *Queue
	Now   func() time.Time

	lock      syncutil.Mutex
	last      motion.Commands
	published bool
	seq       uint64
}

// NewPublisher creates a Publisher on q.
func NewPublisher(q *Queue, robotID string, meta msgs.RobotMeta) *Publisher {
	p := &Publisher{Broker: q, Queue: q, RobotID: robotID, Meta: meta}
	q.OnConnect = func(*Queue) {
		if err := p.PublishMeta(); err != nil {
			glog.Errorf("publish meta: %v", err)
		}
	}
	return p
}

// Name implements framework.Named.
func (p *Publisher) Name() string {
	return "mqtt"
}

// Actuate implements Actuator.
// A failed publish is retried on the next frame.
func (p *Publisher) Actuate(_ context.Context, cmds motion.Commands, r frame.Reading) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.published && cmds == p.last {
		return nil
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	msg := msgs.NewMotionState(cmds, r)
	msg.Seq, msg.Timestamp = p.seq+1, now().UnixNano()
	payload, err := msg.Encode()
	if err != nil {
		return err
	}
	if err := p.Broker.Publish(MotionTopic(p.RobotID), payload, true); err != nil {
		return err
	}
	p.seq++
	p.last, p.published = cmds, true
	return nil
}

// PublishMeta publishes the meta of the robot.
func (p *Publisher) PublishMeta() error {
	data, err := json.Marshal(&p.Meta)
	if err != nil {
		return err
	}
	return p.Broker.Publish(MetaTopic(p.RobotID), data, true)
}

// Run implements framework.Runnable. It keeps the Queue connected until
// ctx is done and clears the retained meta on exit.
func (p *Publisher) Run(ctx context.Context) error {
	if p.Queue == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	for {
		token := p.Queue.Connect()
		token.Wait()
		err := token.Error()
		if err == nil {
			break
		}
		glog.Warningf("MQTT connect: %v", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(DefaultReconnectInterval):
		}
	}
	<-ctx.Done()
	if err := p.Broker.Publish(MetaTopic(p.RobotID), nil, true); err != nil {
		glog.Warningf("clear meta: %v", err)
	}
	p.Queue.Close()
	return ctx.Err()
}
