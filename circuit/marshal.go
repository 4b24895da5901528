package circuit

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/minio/blake2b-simd"
)

// This file implements the circuit's two wire encodings (spec §9
// "diagnostic/interchange formats are implementation-defined") and a
// content fingerprint:
//
//   - Marshal/Unmarshal: a lossless native binary encoding used to hand a
//     Circuit to another process without re-lowering.
//   - MarshalBristol: the Bristol Fashion textual format, the de facto
//     interchange format for boolean-circuit MPC tooling (grounded on the
//     gate vocabulary markkurossi/mpc's compiler emits and getamis/alice's
//     crypto/circuit.LoadBristol reads).
//   - Fingerprint: a content hash of the finalized gate list, grounded on
//     getamis/alice's use of blake2b for commitments.

const nativeMagic = "CCKT"

// Marshal encodes c in a simple length-prefixed native binary format.
func (c *Circuit) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(nativeMagic)

	if err := writeUvarintSlice(&buf, c.InputWidths); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.BigEndian, uint32(len(c.Gates))); err != nil {
		return nil, err
	}
	for _, g := range c.Gates {
		buf.WriteByte(byte(g.Op))
		if err := binary.Write(&buf, binary.BigEndian, uint32(g.A)); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.BigEndian, uint32(g.B)); err != nil {
			return nil, err
		}
	}

	if err := writeWireSlice(&buf, c.OutputWires); err != nil {
		return nil, err
	}

	if err := writeWire(&buf, c.Panic.HasPanicked); err != nil {
		return nil, err
	}
	for _, field := range [][]Wire{c.Panic.Reason, c.Panic.StartLine, c.Panic.StartColumn, c.Panic.EndLine, c.Panic.EndColumn} {
		if err := writeWireSlice(&buf, field); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// Unmarshal decodes a Circuit previously produced by Marshal.
func Unmarshal(data []byte) (*Circuit, error) {
	r := bytes.NewReader(data)
	magic := make([]byte, len(nativeMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("circuit: reading magic: %w", err)
	}
	if string(magic) != nativeMagic {
		return nil, fmt.Errorf("circuit: not a native circuit encoding")
	}

	inputWidths, err := readUvarintSlice(r)
	if err != nil {
		return nil, err
	}

	var gateCount uint32
	if err := binary.Read(r, binary.BigEndian, &gateCount); err != nil {
		return nil, fmt.Errorf("circuit: reading gate count: %w", err)
	}
	gates := make([]Gate, gateCount)
	for i := range gates {
		opByte, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("circuit: reading gate %d op: %w", i, err)
		}
		var a, bWire uint32
		if err := binary.Read(r, binary.BigEndian, &a); err != nil {
			return nil, fmt.Errorf("circuit: reading gate %d operand a: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &bWire); err != nil {
			return nil, fmt.Errorf("circuit: reading gate %d operand b: %w", i, err)
		}
		gates[i] = Gate{Op: GateOp(opByte), A: Wire(a), B: Wire(bWire)}
	}

	outputWires, err := readWireSlice(r)
	if err != nil {
		return nil, err
	}

	hasPanicked, err := readWire(r)
	if err != nil {
		return nil, err
	}
	panicFields := make([][]Wire, 5)
	for i := range panicFields {
		panicFields[i], err = readWireSlice(r)
		if err != nil {
			return nil, err
		}
	}

	return &Circuit{
		InputWidths: inputWidths,
		Gates:       gates,
		OutputWires: outputWires,
		Panic: PanicLayout{
			HasPanicked: hasPanicked,
			Reason:      panicFields[0],
			StartLine:   panicFields[1],
			StartColumn: panicFields[2],
			EndLine:     panicFields[3],
			EndColumn:   panicFields[4],
		},
	}, nil
}

func writeUvarintSlice(buf *bytes.Buffer, xs []int) error {
	if err := binary.Write(buf, binary.BigEndian, uint32(len(xs))); err != nil {
		return err
	}
	for _, x := range xs {
		if err := binary.Write(buf, binary.BigEndian, uint32(x)); err != nil {
			return err
		}
	}
	return nil
}

func readUvarintSlice(r io.Reader) ([]int, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, fmt.Errorf("circuit: reading slice length: %w", err)
	}
	out := make([]int, n)
	for i := range out {
		var x uint32
		if err := binary.Read(r, binary.BigEndian, &x); err != nil {
			return nil, fmt.Errorf("circuit: reading slice element %d: %w", i, err)
		}
		out[i] = int(x)
	}
	return out, nil
}

func writeWire(buf *bytes.Buffer, w Wire) error {
	return binary.Write(buf, binary.BigEndian, uint32(w))
}

func readWire(r io.Reader) (Wire, error) {
	var w uint32
	if err := binary.Read(r, binary.BigEndian, &w); err != nil {
		return 0, fmt.Errorf("circuit: reading wire: %w", err)
	}
	return Wire(w), nil
}

func writeWireSlice(buf *bytes.Buffer, ws []Wire) error {
	if err := binary.Write(buf, binary.BigEndian, uint32(len(ws))); err != nil {
		return err
	}
	for _, w := range ws {
		if err := writeWire(buf, w); err != nil {
			return err
		}
	}
	return nil
}

func readWireSlice(r io.Reader) ([]Wire, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, fmt.Errorf("circuit: reading wire slice length: %w", err)
	}
	out := make([]Wire, n)
	for i := range out {
		w, err := readWire(r)
		if err != nil {
			return nil, err
		}
		out[i] = w
	}
	return out, nil
}

// MarshalBristol renders c in the Bristol Fashion format: a header giving
// gate and wire counts, the per-party input widths, the output width, then
// one line per gate naming its inputs, output and opcode (INV for our
// GateNOT, per the format's convention of one-input gates being named INV).
func (c *Circuit) MarshalBristol() string {
	var sb strings.Builder
	totalWires := 0
	for _, w := range c.InputWidths {
		totalWires += w
	}
	totalWires += len(c.Gates)

	fmt.Fprintf(&sb, "%d %d\n", len(c.Gates), totalWires)
	fmt.Fprintf(&sb, "%d", len(c.InputWidths))
	for _, w := range c.InputWidths {
		fmt.Fprintf(&sb, " %d", w)
	}
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "1 %d\n\n", len(c.OutputWires))

	totalInputs := totalWires - len(c.Gates)
	for i, g := range c.Gates {
		out := totalInputs + i
		switch g.Op {
		case GateNOT:
			fmt.Fprintf(&sb, "1 1 %d %d INV\n", int(g.A), out)
		case GateXOR:
			fmt.Fprintf(&sb, "2 1 %d %d %d XOR\n", int(g.A), int(g.B), out)
		case GateAND:
			fmt.Fprintf(&sb, "2 1 %d %d %d AND\n", int(g.A), int(g.B), out)
		}
	}
	return sb.String()
}

// Dot renders c as a Graphviz diagnostic graph, one node per gate and one
// edge per operand dependency.
func (c *Circuit) Dot() string {
	var sb strings.Builder
	sb.WriteString("digraph circuit {\n")
	totalInputs := 0
	for _, w := range c.InputWidths {
		totalInputs += w
	}
	for i, g := range c.Gates {
		node := totalInputs + i
		fmt.Fprintf(&sb, "  w%d [label=\"%s\"];\n", node, g.Op)
		fmt.Fprintf(&sb, "  w%d -> w%d;\n", int(g.A), node)
		if g.Op != GateNOT {
			fmt.Fprintf(&sb, "  w%d -> w%d;\n", int(g.B), node)
		}
	}
	for i, w := range c.OutputWires {
		fmt.Fprintf(&sb, "  out%d [shape=box,label=\"output %d\"];\n", i, i)
		fmt.Fprintf(&sb, "  w%d -> out%d;\n", int(w), i)
	}
	sb.WriteString("}\n")
	return sb.String()
}

// Fingerprint returns a content hash of the finalized gate list and output
// wires, stable across re-marshaling of the same circuit.
func (c *Circuit) Fingerprint() ([32]byte, error) {
	data, err := c.Marshal()
	if err != nil {
		return [32]byte{}, err
	}
	return blake2b.Sum256(data), nil
}
