package memory

import "bytes"

const exportName = "memory"

const (
	sectionMemory = 0x05
	sectionExport = 0x07
	externMemory  = 0x02
	limitsMinOnly = 0x00
	limitsMinMax  = 0x01
)

var wasmHeader = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
}

// memoryModule encodes a module whose only content is one memory exported
// as "memory".
func memoryModule(pages, maxPages uint32) []byte {
	var limits bytes.Buffer
	limits.WriteByte(0x01) // one memory
	if maxPages == 0 {
		limits.WriteByte(limitsMinOnly)
		writeU32(&limits, pages)
	} else {
		limits.WriteByte(limitsMinMax)
		writeU32(&limits, pages)
		writeU32(&limits, maxPages)
	}

	var export bytes.Buffer
	export.WriteByte(0x01) // one export
	writeU32(&export, uint32(len(exportName)))
	export.WriteString(exportName)
	export.WriteByte(externMemory)
	writeU32(&export, 0)

	var out bytes.Buffer
	out.Write(wasmHeader)
	writeSection(&out, sectionMemory, limits.Bytes())
	writeSection(&out, sectionExport, export.Bytes())
	return out.Bytes()
}

func writeSection(buf *bytes.Buffer, id byte, payload []byte) {
	buf.WriteByte(id)
	writeU32(buf, uint32(len(payload)))
	buf.Write(payload)
}

// writeU32 writes an unsigned LEB128 encoded uint32.
func writeU32(buf *bytes.Buffer, v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf.WriteByte(b)
		if v == 0 {
			break
		}
	}
}
