// Package bpdu implements the BPDU ingress and egress path (spec.md
// §4.4/§4.5): bit-exact 802.1D LLC framing, validation, and dispatch. It
// is grounded on the C source's struct llc_header, bridge_bpdu_rcv and
// MSTP_OUT_tx_bpdu, with the byte-offset encode/decode style of the
// teacher's pkg/packet/processor.go (flat []byte, binary.BigEndian)
// standing in for the original's packed-struct cast.
package bpdu

import "encoding/binary"

// Wire-format constants from spec.md §6.
const (
	ethAlen     = 6
	ethHlen     = 14
	ethDataLen  = 1500
	llcSapBspan = 0x42
	llcPduLenU  = 3
	llcPduTypeU = 3

	llcHeaderLen = ethHlen + 3 // Ethernet header + DSAP/SSAP/control
)

// BridgeGroupAddress is the IEEE-reserved multicast destination for STP
// BPDUs (802.1D §7.12.3).
var BridgeGroupAddress = [ethAlen]byte{0x01, 0x80, 0xc2, 0x00, 0x00, 0x00}

// decodedFrame is the result of parsing the Ethernet+LLC header off an
// ingress frame.
type decodedFrame struct {
	dest    [ethAlen]byte
	src     [ethAlen]byte
	len8023 uint16
	dsap    byte
	ssap    byte
	control byte
	payload []byte // everything after the LLC header, full frame length
}

// decodeFrame parses the 14-byte Ethernet header and 3-byte LLC header
// off frame. It only requires frame to be at least llcHeaderLen (17)
// bytes; further validation (addresses, length field, SAPs, control
// bits) is the caller's job, per spec.md §4.4 steps 3-4.
func decodeFrame(frame []byte) (decodedFrame, bool) {
	if len(frame) < llcHeaderLen {
		return decodedFrame{}, false
	}
	var d decodedFrame
	copy(d.dest[:], frame[0:6])
	copy(d.src[:], frame[6:12])
	d.len8023 = binary.BigEndian.Uint16(frame[12:14])
	d.dsap = frame[14]
	d.ssap = frame[15]
	d.control = frame[16]
	d.payload = frame[llcHeaderLen:]
	return d, true
}

// validate checks d against the inequalities and fixed fields spec.md
// §4.4 step 4 requires, given the full received frame length frameLen.
func (d decodedFrame) validate(frameLen int) bool {
	if d.dest != BridgeGroupAddress {
		return false
	}
	l := int(d.len8023)
	if l < llcPduLenU || l > ethDataLen || l > frameLen-ethHlen {
		return false
	}
	if d.dsap != llcSapBspan || d.ssap != llcSapBspan {
		return false
	}
	if d.control&0x3 != llcPduTypeU {
		return false
	}
	return true
}

// bpduPayload returns the BPDU payload (LLC header stripped), with
// length len8023 - LLC_PDU_LEN_U, per spec.md §4.4 step 5.
func (d decodedFrame) bpduPayload() []byte {
	n := int(d.len8023) - llcPduLenU
	if n < 0 {
		n = 0
	}
	if n > len(d.payload) {
		n = len(d.payload)
	}
	return d.payload[:n]
}

// encodeFrame synthesizes the LLC-framed egress frame for a BPDU
// payload sent from srcMAC, per spec.md §4.5/§6:
//
//	offset 0..5   dest MAC   = 01:80:c2:00:00:00
//	offset 6..11  src MAC    = srcMAC
//	offset 12..13 length     = big-endian(len(payload) + 3)
//	offset 14     DSAP       = 0x42
//	offset 15     SSAP       = 0x42
//	offset 16     control    = 0x03
//	offset 17..   payload
func encodeFrame(srcMAC []byte, payload []byte) []byte {
	frame := make([]byte, llcHeaderLen+len(payload))
	copy(frame[0:6], BridgeGroupAddress[:])
	copy(frame[6:12], srcMAC)
	binary.BigEndian.PutUint16(frame[12:14], uint16(len(payload)+llcPduLenU))
	frame[14] = llcSapBspan
	frame[15] = llcSapBspan
	frame[16] = llcPduTypeU
	copy(frame[llcHeaderLen:], payload)
	return frame
}
