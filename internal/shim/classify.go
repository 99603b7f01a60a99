package shim

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// IsTRDP reports whether data is a TRDP frame: IPv4 over Ethernet,
// UDP transport, UDP destination port TRDPPort — the Go equivalent of
// is_trdp_packet. Decoding only the layers classification needs, via a
// DecodingLayerParser rather than a full gopacket.Packet, is the same
// shape pavelkim-tzsp_server and godtoy-netcap use to classify captured
// frames.
func IsTRDP(data []byte) bool {
	var ethLayer layers.Ethernet
	var ipLayer layers.IPv4
	var udpLayer layers.UDP

	parser := gopacket.NewDecodingLayerParser(layers.LayerTypeEthernet, &ethLayer, &ipLayer, &udpLayer)
	parser.IgnoreUnsupported = true

	decoded := make([]gopacket.LayerType, 0, 3)
	if err := parser.DecodeLayers(data, &decoded); err != nil {
		return false
	}

	var sawIPv4, sawUDP bool
	for _, lt := range decoded {
		switch lt {
		case layers.LayerTypeIPv4:
			sawIPv4 = true
		case layers.LayerTypeUDP:
			sawUDP = true
		}
	}

	return sawIPv4 && sawUDP && uint16(udpLayer.DstPort) == TRDPPort
}

// IsTT reports whether data is a time-triggered frame: its Ethernet
// EtherType is EtherTypeTT — the Go equivalent of is_tt_packet.
func IsTT(data []byte) bool {
	if len(data) < EthHeaderLen {
		return false
	}
	return uint16(data[12])<<8|uint16(data[13]) == EtherTypeTT
}
