package testutil

import "bytes"

// ID3v23 builds a minimal ID3v2.3 tag holding one ISO-8859-1 text frame,
// followed by a little padding.
func ID3v23(frame, text string) []byte {
	body := append([]byte{0x00}, text...)

	var f bytes.Buffer
	f.WriteString(frame)
	n := len(body)
	f.Write([]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	f.Write([]byte{0, 0})
	f.Write(body)
	f.Write(make([]byte, 16)) // padding

	// syncsafe size
	size := f.Len() + 10
	var b bytes.Buffer
	b.WriteString("ID3")
	b.Write([]byte{3, 0, 0})
	b.Write([]byte{byte(size >> 21 & 0x7f), byte(size >> 14 & 0x7f), byte(size >> 7 & 0x7f), byte(size & 0x7f)})
	b.Write(f.Bytes())
	return b.Bytes()
}
