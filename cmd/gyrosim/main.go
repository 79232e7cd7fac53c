package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"github.com/robotalks/gyrodrive/pkg/ble/source"
	"github.com/robotalks/gyrodrive/pkg/cli/sh"
)

var (
	target    = "-"
	hexOutput bool
	baudRate  = source.DefaultBaudRate
)

func init() {
	flag.StringVar(&target, "to", target, "Where frames are sent: - for stdout, file:///path to record, or a serial/websocket URL.")
	flag.BoolVar(&hexOutput, "hex", hexOutput, "Print frames as hex instead of raw bytes.")
	flag.IntVar(&baudRate, "baud", baudRate, "Default serial baud rate.")
	sh.SetupFlags()
}

func open(target string) (io.WriteCloser, error) {
	if target == "-" {
		return os.Stdout, nil
	}
	if path := strings.TrimPrefix(target, "file://"); path != target {
		return os.Create(path)
	}
	conf := source.NewConfig()
	conf.URL, conf.BaudRate = target, baudRate
	return conf.NewSource()
}

func main() {
	flag.Parse()
	out, err := open(target)
	if err != nil {
		log.Fatalln(err)
	}
	defer out.Close()
	sh.New(out, hexOutput).Run(flag.Args()...)
}
