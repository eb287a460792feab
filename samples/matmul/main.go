package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/npusim/api"
	"github.com/sarchlab/npusim/config"
	"github.com/sarchlab/npusim/npu"
	"github.com/sarchlab/npusim/verify"
)

const (
	weightAddr = 0x0000
	inputAddr  = 0x1000
	outputAddr = 0x8000
	rows       = 64
)

func matMul(driver api.Driver, device *npu.Comp) {
	n := device.Device().Config().ArraySize
	r := rand.New(rand.NewSource(1))
	w := verify.RandomMatrix(r, n, n)
	x := verify.RandomMatrix(r, rows, n)

	memory := device.Device().Memory()
	memory.WriteWords(weightAddr, api.FormatWeights(w))
	memory.WriteWords(inputAddr, api.FormatInputs(x))

	driver.LoadWeights(weightAddr)
	driver.Execute(inputAddr, outputAddr, rows)
	driver.WaitIdle()

	if err := driver.Run(); err != nil {
		fmt.Println(err)
		fmt.Println(device.Device().StateTable())
		atexit.Exit(1)
	}

	got := api.ParseOutputs(memory.ReadWords(outputAddr, rows*n), n)
	report := verify.Compare("matmul", got, verify.MatMul(x, w))
	report.Cycles = device.Device().Cycle()
	report.WriteReport(os.Stdout)

	if !report.OK() {
		atexit.Exit(1)
	}
}

func main() {
	logFile, err := os.Create("matmul_run.log")
	if err != nil {
		fmt.Println("Failed to open log file:", err)
		return
	}
	defer logFile.Close()

	handler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level: npu.LevelTrace,
	})
	slog.SetDefault(slog.New(handler))

	spec := config.DefaultSpec()
	if len(os.Args) > 1 {
		spec, err = config.LoadSpec(os.Args[1])
		if err != nil {
			fmt.Println(err)
			return
		}
	}

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
		WithSpec(spec).
		WithMonitor(monitor).
		Build("NPU")
	device.AcceptHook(npu.TraceHook{})

	driver.RegisterDevice(device)

	monitor.StartServer()

	matMul(driver, device)

	atexit.Exit(0)
}
