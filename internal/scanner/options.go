package scanner

import "time"

// Option configures an NmapScanner
type Option func(*NmapScanner)

// WithTimeout bounds the whole scan
func WithTimeout(d time.Duration) Option {
	return func(s *NmapScanner) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithPortRange sets the ports to probe.
// Format: "80,443,8080" or "1-1000" or "22,80-443,8080". Invalid lists are ignored.
func WithPortRange(ports string) Option {
	return func(s *NmapScanner) {
		if validated, err := parsePorts(ports); err == nil {
			s.portRange = validated
		}
	}
}

// WithServiceDetection enables or disables service version detection (-sV)
func WithServiceDetection(enabled bool) Option {
	return func(s *NmapScanner) {
		s.serviceDetection = enabled
	}
}

// WithSkipHostDiscovery treats every target as online (-Pn).
// Useful for networks that block ICMP.
func WithSkipHostDiscovery(skip bool) Option {
	return func(s *NmapScanner) {
		s.skipHostDiscovery = skip
	}
}

// WithFastScan probes only ssh and web ports without service detection
func WithFastScan() Option {
	return func(s *NmapScanner) {
		s.portRange = "22,80,443"
		s.serviceDetection = false
		s.timeout = 5 * time.Minute
	}
}
