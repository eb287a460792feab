package npu

import "github.com/sarchlab/akita/v4/sim"

// RegReq reads or writes one register of the device.
type RegReq struct {
	sim.MsgMeta

	Write   bool
	Address uint32
	Data    uint32
}

// Meta returns the meta data of the msg.
func (m *RegReq) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// Clone returns a copy of the msg with a new ID.
func (m *RegReq) Clone() sim.Msg {
	clone := *m
	clone.ID = sim.GetIDGenerator().Generate()

	return &clone
}

// RegReqBuilder is a factory for RegReq.
type RegReqBuilder struct {
	src, dst sim.RemotePort
	write    bool
	address  uint32
	data     uint32
}

// WithSrc sets the source port of the msg.
func (b RegReqBuilder) WithSrc(src sim.RemotePort) RegReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination port of the msg.
func (b RegReqBuilder) WithDst(dst sim.RemotePort) RegReqBuilder {
	b.dst = dst
	return b
}

// WithAddress sets the register address.
func (b RegReqBuilder) WithAddress(address uint32) RegReqBuilder {
	b.address = address
	return b
}

// WithWriteData turns the request into a write of data.
func (b RegReqBuilder) WithWriteData(data uint32) RegReqBuilder {
	b.write = true
	b.data = data

	return b
}

// Build creates a RegReq.
func (b RegReqBuilder) Build() *RegReq {
	return &RegReq{
		MsgMeta: sim.MsgMeta{
			ID:  sim.GetIDGenerator().Generate(),
			Src: b.src,
			Dst: b.dst,
		},
		Write:   b.write,
		Address: b.address,
		Data:    b.data,
	}
}

// RegRsp carries the data of a register read.
type RegRsp struct {
	sim.MsgMeta

	RspTo string
	Data  uint32
}

// Meta returns the meta data of the msg.
func (m *RegRsp) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// Clone returns a copy of the msg with a new ID.
func (m *RegRsp) Clone() sim.Msg {
	clone := *m
	clone.ID = sim.GetIDGenerator().Generate()

	return &clone
}

// GetRspTo returns the ID of the request being answered.
func (m *RegRsp) GetRspTo() string {
	return m.RspTo
}
