// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"net/netip"
	"reflect"
	"testing"
)

func TestParseModes(t *testing.T) {
	ipTests := []struct {
		s     string
		mode  IPMode
		valid bool
	}{
		{"", IPBoth, true},
		{"both", IPBoth, true},
		{"IPv4", IPv4Only, true},
		{"ipv6", IPv6Only, true},
		{"ipx", IPBoth, false},
	}
	for _, test := range ipTests {
		if mode, err := ParseIPMode(test.s); (err == nil) != test.valid || mode != test.mode {
			t.Fatalf("ParseIPMode(%q) = %v, %v", test.s, mode, err)
		}
	}

	freshnessTests := []struct {
		s     string
		mode  FreshnessMode
		valid bool
	}{
		{"", FreshnessStrict, true},
		{"strict", FreshnessStrict, true},
		{"Serial", FreshnessSerial, true},
		{"rfc1982", FreshnessStrict, false},
	}
	for _, test := range freshnessTests {
		if mode, err := ParseFreshnessMode(test.s); (err == nil) != test.valid || mode != test.mode {
			t.Fatalf("ParseFreshnessMode(%q) = %v, %v", test.s, mode, err)
		}
	}
}

func TestConfigGroups(t *testing.T) {
	tests := []struct {
		conf   Config
		groups []string
	}{
		{Config{}, []string{"[ff02::d4cd:305:3af1:aeef:75de]:3005", "224.0.0.108:3005"}},
		{Config{Mode: IPv4Only}, []string{"224.0.0.108:3005"}},
		{Config{Mode: IPv6Only}, []string{"[ff02::d4cd:305:3af1:aeef:75de]:3005"}},
		{Config{Broadcast: true}, []string{"[ff02::1]:3005", "255.255.255.255:3005"}},
		{Config{Mode: IPv6Only, Broadcast: true, Interface: "eth0"}, []string{"[ff02::1%eth0]:3005"}},
	}

	for _, test := range tests {
		var expected []netip.AddrPort
		for _, s := range test.groups {
			expected = append(expected, netip.MustParseAddrPort(s))
		}

		if groups := test.conf.groups(Port); !reflect.DeepEqual(groups, expected) {
			t.Fatalf("groups of %+v are %v, expected %v", test.conf, groups, expected)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	conf := Config{RateLimit: 2}.withDefaults()

	if conf.Interval != DefaultInterval || conf.PollInterval != DefaultPollInterval ||
		conf.DefaultDuration != DefaultContactDuration || conf.RateBurst != 1 {
		t.Fatalf("unexpected defaults %+v", conf)
	}
}
