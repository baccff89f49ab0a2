// Package codec provides the byte-level record format of the settings region.
//
// The region is filled from its end toward its beginning. Every record is a
// payload followed, at higher addresses, by a 16-bit length:
//
//	lower addresses                                   higher addresses
//	... [value payload][len_hi][len_lo][key payload][len_hi][len_lo] | end
//
// Two consecutive records form an entry: the key record sits closer to the end
// of the region and the value record immediately below it.
//
// # Special lengths
//
//   - 0xFFFF: erased space. A scan reaching it stops without producing a record.
//   - 0x0000: an empty payload. An empty value is valid; an empty key marks the
//     end of the entry list and is written below the newest entry.
//
// # Scanning
//
// Reader is a small state machine walking backward one record at a time:
//
//	Begin -> LenByte1 -> LenByte2 -> Value | EmptyValue -> Output -> Begin
//	                        \-> End (0xFFFF, too little room, or a length past begin)
//
// Cursor never reads or writes outside the range it was built for; a length
// that would step past the beginning of the region ends the scan instead.
//
// # Writing
//
// Writer mirrors the reader: it stores the low length byte, the high length
// byte, then the payload from its last byte to its first, moving backward after
// each byte. The payload therefore lands in natural order.
//
//	m := medium.NewMemory(64)
//	w := codec.NewWriter(m, 0, 64)
//	w.WriteEntry("ssid0", "home")
//
//	r := codec.NewReader(m, 0, 64)
//	entry, ok := r.NextEntry()
//
// Readers and writers hold no buffers and are not safe for concurrent use.
package codec
