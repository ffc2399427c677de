package graph

import "encoding/binary"

// CanonicalBytes serialises the connection graph in a fixed row order with
// fixed width encodings so that logically identical graphs always produce
// identical bytes regardless of how they were constructed. The encoding is
// the hashed portion of a genetic code's content address and must never
// change shape.
func (cg *ConnectionGraph) CanonicalBytes() []byte {
	buf := make([]byte, 0, 64)
	for _, row := range DestinationRows {
		conns := cg.destinationRow(row)
		buf = append(buf, byte(row))
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(conns)))
		for _, conn := range conns {
			buf = append(buf, byte(conn.Row), byte(conn.Idx))
			buf = binary.BigEndian.AppendUint16(buf, uint16(conn.Typ))
		}
	}
	buf = append(buf, byte(RowC))
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(cg.C)))
	for _, c := range cg.C {
		buf = binary.BigEndian.AppendUint16(buf, uint16(c.Typ))
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(c.Val)))
		buf = append(buf, c.Val...)
	}
	return buf
}
