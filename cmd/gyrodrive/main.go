package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"fmt"
	"log"

	"github.com/golang/glog"
	"periph.io/x/host/v3"

	"github.com/robotalks/gyrodrive/pkg/actuator"
	"github.com/robotalks/gyrodrive/pkg/actuator/motor"
	"github.com/robotalks/gyrodrive/pkg/actuator/mqtt"
	"github.com/robotalks/gyrodrive/pkg/ble/module"
	"github.com/robotalks/gyrodrive/pkg/ble/source"
	fx "github.com/robotalks/gyrodrive/pkg/framework"
	"github.com/robotalks/gyrodrive/pkg/pipeline"
)

var listPorts bool

func init() {
	flag.BoolVar(&listPorts, "list-ports", listPorts, "List serial ports and exit.")
	source.SetupFlags()
	module.SetupFlags()
	motor.SetupFlags()
	mqtt.SetupFlags()
	pipeline.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if listPorts {
		ports, err := source.Ports()
		if err != nil {
			log.Fatalln(err)
		}
		for _, port := range ports {
			fmt.Println(port)
		}
		return
	}

	if motor.Default().Enabled() || module.Default().ModePin != "" {
		if _, err := host.Init(); err != nil {
			log.Fatalf("init GPIO: %v", err)
		}
	}

	src := source.Default().MustNewSource()
	runner := fx.NewRunner().HandleSignals()

	if conf := module.Default(); conf.ResetOnStart {
		m, err := conf.NewModule(src)
		if err != nil {
			log.Fatalln(err)
		}
		if err := m.Reset(runner.Context); err != nil {
			log.Fatalf("reset BLE module: %v", err)
		}
	}

	mux := actuator.NewMux(actuator.NewLog())
	var driver *motor.Driver
	if conf := motor.Default(); conf.Enabled() {
		d, err := conf.NewDriver(motor.LookupGPIO)
		if err != nil {
			log.Fatalln(err)
		}
		driver = d
		mux.Add(driver)
	}
	if conf := mqtt.Default(); conf.Enabled() {
		mux.Add(conf.MustNewPublisher(source.Default().URL))
	}

	receiver := pipeline.Default().NewReceiver(src, mux)
	observers := pipeline.Observers{pipeline.LogObserver{}}
	if addr := pipeline.Default().MetricsAddr; addr != "" {
		reg := pipeline.NewRegistry()
		metrics, err := pipeline.NewMetrics(reg)
		if err != nil {
			log.Fatalln(err)
		}
		observers = append(observers, metrics)
		runner.Go(&pipeline.MetricsServer{Addr: addr, Gatherer: reg})
	}
	receiver.Observer = observers

	glog.Infof("receiving frames from %s", source.Default().URL)
	err := runner.Go(receiver).Go(mux.Runnables()...).Wait()
	if driver != nil {
		if err := driver.Close(); err != nil {
			glog.Errorf("stop motors: %v", err)
		}
	}
	stats := receiver.Stats()
	glog.Infof("accepted %d, bad tag %d, bad checksum %d, discarded %d bytes",
		stats.Accepted, stats.BadTag, stats.BadChecksum, stats.Discarded)
	if err != nil {
		glog.Flush()
		log.Fatalln(err)
	}
}
