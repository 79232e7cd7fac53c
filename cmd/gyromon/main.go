package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/gyrodrive/pkg/actuator/mqtt"
	fx "github.com/robotalks/gyrodrive/pkg/framework"
	"github.com/robotalks/gyrodrive/pkg/motion/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/gyro/"
)

func init() {
	if val := os.Getenv("GYRO_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	w := &mqtt.Watcher{
		OnMotion: func(id string, st *msgs.MotionState) {
			r := st.Reading()
			log.Printf("%s: #%d %s x=%.3f y=%.3f z=%.3f", id, st.Seq,
				strings.Join(st.Commands, "+"), r.X, r.Y, r.Z)
		},
		OnMeta: func(id string, meta *msgs.RobotMeta) {
			if meta == nil {
				log.Printf("%s: offline", id)
				return
			}
			log.Printf("%s: online %q source=%s", id, meta.Description, meta.Source)
		},
		OnError: func(topic string, err error) {
			log.Printf("%s: bad message: %v", topic, err)
		},
	}
	w.Watch(q)

	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	defer q.Close()

	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}))
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
