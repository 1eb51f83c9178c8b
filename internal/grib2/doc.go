// Package grib2 reads WMO GRIB edition 2 messages.
//
// # Layout
//
// A GRIB2 file is a sequence of self-delimiting messages. Each message is a
// fixed sequence of numbered sections:
//
//	0 Indicator          "GRIB", discipline, edition, total length (16 octets)
//	1 Identification     originating centre, reference time
//	2 Local use          optional, skipped
//	3 Grid definition    template 3.0 (regular latitude/longitude) decoded
//	4 Product definition templates 4.0 and 4.8 decoded
//	5 Data representation template 5.0 (simple packing) decoded
//	6 Bitmap             optional, retained but never applied
//	7 Data               packed payload
//	8 End                "7777"
//
// Octet ranges follow the regulations: 1-based, inclusive, relative to the
// start of the current section. Multi-octet integers are big-endian. Signed
// quantities use sign-magnitude encoding (the most significant bit is the
// sign), not two's complement.
//
// Each section is gated on its own section-number octet (octet 5). A section
// whose number does not match is recorded as absent and the cursor does not
// move. Problems inside a message never abort a scan; they are collected on
// [Message.Diagnostics] and logged.
//
// # Simple packing
//
// Regulation 92.9.4 recovers a value Y from a packed unsigned integer X:
//
//	Y × 10^D = R + X × 2^E
//
// where R is the IEEE float32 reference value, E the binary scale factor and
// D the decimal scale factor.
package grib2
