package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/npusim/api"
	"github.com/sarchlab/npusim/config"
	"github.com/sarchlab/npusim/extmem"
	"github.com/sarchlab/npusim/npu"
	"github.com/sarchlab/npusim/verify"
)

const (
	srcAddr = 0x0000
	dstAddr = 0x4000
	words   = 103
)

func dmaLoop(driver api.Driver, device *npu.Comp) {
	src := make([]uint32, words)
	for i := range src {
		src[i] = 0xA5000000 | uint32(i)
	}

	memory := device.Device().Memory()
	memory.WriteWords(srcAddr, src)

	driver.DMACopy(srcAddr, dstAddr, words)

	if err := driver.Run(); err != nil {
		fmt.Println(err)
		atexit.Exit(1)
	}

	report := verify.CompareWords("dma loopback",
		memory.ReadWords(dstAddr, words), src)
	report.Cycles = device.Device().Cycle()
	report.WriteReport(os.Stdout)
	fmt.Println(device.Device().StateTable())

	if !report.OK() {
		atexit.Exit(1)
	}
}

func main() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: npu.LevelTrace,
	})
	slog.SetDefault(slog.New(handler))

	monitor := monitoring.NewMonitor()

	engine := sim.NewSerialEngine()
	monitor.RegisterEngine(engine)

	driver := api.DriverBuilder{}.
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build("Driver")
	monitor.RegisterComponent(driver)

	device := config.MakeDeviceBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		WithMemoryStall(extmem.EveryNth(5), extmem.Random(7, 0.25)).
		WithMonitor(monitor).
		Build("NPU")

	driver.RegisterDevice(device)

	monitor.StartServer()

	dmaLoop(driver, device)

	atexit.Exit(0)
}
