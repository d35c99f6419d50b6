package config

import (
	"encoding/binary"
	"fmt"
	"net"
)

// CIDRSubnet calculates a subnet address given a network address, a netmask
// size increase, and a subnet number. It mimics Terraform's cidrsubnet and is
// used to derive subnet defaults from a non-default VPC range.
//
// Only IPv4 addresses are supported.
func CIDRSubnet(prefix string, newbits int, netnum int) (string, error) {
	network, err := parseIPv4Net(prefix)
	if err != nil {
		return "", err
	}

	maskSize, totalBits := network.Mask.Size()
	newMaskSize := maskSize + newbits

	if newMaskSize > totalBits {
		return "", fmt.Errorf("prefix extension of %d bits is too large for %s", newbits, prefix)
	}

	maxSubnets := 1 << newbits
	if netnum >= maxSubnets {
		return "", fmt.Errorf("subnet number %d exceeds max subnets %d", netnum, maxSubnets)
	}

	subnetSize := uint64(1) << (totalBits - newMaskSize)
	// #nosec G115
	ipInt := ipToUint(network.IP) + uint64(netnum)*subnetSize

	return fmt.Sprintf("%s/%d", uintToIP(ipInt).String(), newMaskSize), nil
}

// defaultSubnets splits vpc into its first two /24 (or next smaller) ranges.
func defaultSubnets(vpc string) (string, string, error) {
	network, err := parseIPv4Net(vpc)
	if err != nil {
		return "", "", err
	}
	maskSize, _ := network.Mask.Size()
	newbits := 24 - maskSize
	if newbits < 1 {
		newbits = 1
	}
	first, err := CIDRSubnet(vpc, newbits, 0)
	if err != nil {
		return "", "", err
	}
	second, err := CIDRSubnet(vpc, newbits, 1)
	if err != nil {
		return "", "", err
	}
	return first, second, nil
}

// cidrContains reports whether inner lies entirely within outer.
func cidrContains(outer, inner *net.IPNet) bool {
	outerMask, _ := outer.Mask.Size()
	innerMask, _ := inner.Mask.Size()
	return innerMask >= outerMask && outer.Contains(inner.IP)
}

// cidrOverlaps reports whether two networks share any address.
func cidrOverlaps(a, b *net.IPNet) bool {
	return a.Contains(b.IP) || b.Contains(a.IP)
}

// parseIPv4Net parses s as an IPv4 CIDR block and rejects host bits.
func parseIPv4Net(s string) (*net.IPNet, error) {
	ip, network, err := net.ParseCIDR(s)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR %q: %w", s, err)
	}
	if network.IP.To4() == nil {
		return nil, fmt.Errorf("only IPv4 ranges are supported, got %s", s)
	}
	if !ip.Equal(network.IP) {
		return nil, fmt.Errorf("CIDR %s has host bits set, did you mean %s?", s, network.String())
	}
	network.IP = network.IP.To4()
	return network, nil
}

func ipToUint(ip net.IP) uint64 {
	if ip4 := ip.To4(); ip4 != nil {
		return uint64(binary.BigEndian.Uint32(ip4))
	}
	return 0
}

func uintToIP(val uint64) net.IP {
	ip := make(net.IP, 4)
	// #nosec G115
	binary.BigEndian.PutUint32(ip, uint32(val))
	return ip
}
