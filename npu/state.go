package npu

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

// StateTable renders the state of every component as a table.
func (d *Device) StateTable() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s @ cycle %d", d.name, d.cycle))
	t.AppendHeader(table.Row{"Component", "State", "Detail"})

	seq := d.seq
	t.AppendRow(table.Row{
		"Sequencer",
		seq.Phase().String(),
		fmt.Sprintf("mode=%s in=%d out=%d inflight=%d pending=%d",
			seq.Mode(), seq.RowsIn(), seq.RowsOut(), seq.InFlight(),
			seq.Pending()),
	})
	t.AppendRow(table.Row{
		"Core",
		idleOrBusy(d.core.Idle()),
		fmt.Sprintf("%dx%d %s latency=%d", d.cfg.ArraySize, d.cfg.ArraySize,
			d.cfg.Datapath, d.core.Latency()),
	})
	t.AppendRow(table.Row{
		"FIFO",
		fmt.Sprintf("%d/%d", d.fifo.Size(), d.fifo.Capacity()),
		"",
	})
	t.AppendRow(table.Row{
		"ReadMaster",
		d.rd.State().String(),
		fmt.Sprintf("bursts=%d words=%d pending=%d",
			d.rd.Bursts(), d.rd.Words(), d.rd.Pending()),
	})
	t.AppendRow(table.Row{
		"WriteMaster",
		d.wr.State().String(),
		fmt.Sprintf("bursts=%d words=%d remaining=%d",
			d.wr.Bursts(), d.wr.Words(), d.wr.Remaining()),
	})
	t.AppendRow(table.Row{
		"Memory",
		idleOrBusy(!d.memory.Busy()),
		fmt.Sprintf("reads=%d writes=%d", d.memory.ReadBeats(),
			d.memory.WriteBeats()),
	})

	return t.Render()
}

func idleOrBusy(idle bool) string {
	if idle {
		return "IDLE"
	}

	return "BUSY"
}
