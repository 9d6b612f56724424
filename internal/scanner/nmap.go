// Package scanner discovers devices on a live network with nmap and turns
// the results into topology documents the editor can import.
package scanner

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
	"github.com/sirupsen/logrus"

	"netsketch/internal/codec"
	"netsketch/internal/domain"
	"netsketch/internal/logging"
)

// NmapScanner runs nmap against a set of targets
type NmapScanner struct {
	targets           []string
	timeout           time.Duration
	portRange         string
	serviceDetection  bool
	skipHostDiscovery bool
}

// NewNmapScanner creates a scanner for CIDR ranges or individual hosts
func NewNmapScanner(targets []string, opts ...Option) *NmapScanner {
	s := &NmapScanner{
		targets:          targets,
		timeout:          10 * time.Minute,
		portRange:        "22,25,53,80,443,445,3389,5432,5900,6443,8080,8443,9090,9100",
		serviceDetection: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan runs one scan per target and merges every up host into a single
// document. A failing target is logged and skipped.
func (s *NmapScanner) Scan(ctx context.Context) (*domain.Document, error) {
	if len(s.targets) == 0 {
		return nil, fmt.Errorf("no scan targets")
	}
	targets, err := expandTargets(s.targets)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	log := logging.WithOperation("scan")
	merged := &nmap.Run{}
	for _, target := range targets {
		run, err := s.scanTarget(ctx, target)
		if err != nil {
			log.WithError(err).WithField("target", target).Warn("scan failed")
			continue
		}
		merged.Hosts = append(merged.Hosts, run.Hosts...)
	}

	doc := codec.NewNmapCodec().FromRun(merged)
	doc.Timestamp = time.Now().UnixMilli()

	log.WithFields(logrus.Fields{
		"targets": len(targets),
		"devices": len(doc.Devices),
	}).Info("scan complete")

	return doc, nil
}

func (s *NmapScanner) scanTarget(ctx context.Context, target string) (*nmap.Run, error) {
	opts := []nmap.Option{
		nmap.WithTargets(target),
		nmap.WithPorts(s.portRange),
	}
	if s.serviceDetection {
		opts = append(opts, nmap.WithServiceInfo())
	}
	if s.skipHostDiscovery {
		opts = append(opts, nmap.WithSkipHostDiscovery())
	}

	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	logging.WithField("target", target).Debug("scanning")
	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if warnings != nil && len(*warnings) > 0 {
		logging.WithField("target", target).Warnf("nmap warnings: %v", *warnings)
	}
	if result == nil {
		return nil, fmt.Errorf("nil scan result")
	}

	return result, nil
}

// expandTargets normalizes CIDR targets; hosts and single IPs pass through
func expandTargets(targets []string) ([]string, error) {
	var expanded []string
	for _, target := range targets {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if strings.Contains(target, "/") {
			_, ipNet, err := net.ParseCIDR(target)
			if err != nil {
				return nil, fmt.Errorf("invalid CIDR %s: %w", target, err)
			}
			expanded = append(expanded, ipNet.String())
			continue
		}
		expanded = append(expanded, target)
	}
	if len(expanded) == 0 {
		return nil, fmt.Errorf("no scan targets")
	}
	return expanded, nil
}

// parsePorts validates an nmap port list such as "22,80-443,8080"
func parsePorts(portRange string) (string, error) {
	for _, part := range strings.Split(portRange, ",") {
		part = strings.TrimSpace(part)
		if start, end, ok := strings.Cut(part, "-"); ok {
			lo, err := parsePort(start)
			if err != nil {
				return "", err
			}
			hi, err := parsePort(end)
			if err != nil {
				return "", err
			}
			if hi < lo {
				return "", fmt.Errorf("invalid port range: %s", part)
			}
			continue
		}
		if _, err := parsePort(part); err != nil {
			return "", err
		}
	}
	return portRange, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port number: %s", s)
	}
	return port, nil
}
