// SPDX-FileCopyrightText: 2026 dtn7-ipnd contributors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package beacon

import (
	"bytes"
	"math"
	"testing"
)

func TestReadRawItem(t *testing.T) {
	tests := []struct {
		data  []byte
		item  []byte
		valid bool
	}{
		{[]byte{0x00, 0x01}, []byte{0x00}, true},
		{[]byte{0x82, 0x01, 0x02, 0x03}, []byte{0x82, 0x01, 0x02}, true},
		{[]byte{0x5f, 0x41, 0x00, 0x40, 0xff}, []byte{0x5f, 0x41, 0x00, 0x40, 0xff}, true},
		{[]byte{0xd8, 0x20, 0x61, 0x78}, []byte{0xd8, 0x20, 0x61, 0x78}, true},
		{[]byte{0x5f, 0x61, 0x00, 0xff}, nil, false},
		{[]byte{0x5f, 0x5f, 0xff, 0xff}, nil, false},
		{[]byte{0xbf, 0x01, 0xff}, nil, false},
		{[]byte{0x1c}, nil, false},
		{[]byte{0x1f}, nil, false},
		{[]byte{0xf8, 0x10}, nil, false},
		{[]byte{0x82, 0x01, 0xff}, nil, false},
		{[]byte{0xc1}, nil, false},
		{[]byte{0x44, 0x01}, nil, false},
		{[]byte{0x5b, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}, nil, false},
	}

	for _, test := range tests {
		item, err := readRawItem(bytes.NewReader(test.data))
		if (err == nil) != test.valid {
			t.Fatalf("Reading %x errored: %v", test.data, err)
		}
		if test.valid && !bytes.Equal(item, test.item) {
			t.Fatalf("Reading %x resulted in %x, expected %x", test.data, item, test.item)
		}
	}
}

func TestReadRawItemDepth(t *testing.T) {
	shallow := append(bytes.Repeat([]byte{0x81}, maxItemDepth), 0x00)
	if _, err := readRawItem(bytes.NewReader(shallow)); err != nil {
		t.Fatalf("Reading %d nested arrays failed: %v", maxItemDepth, err)
	}

	deep := append(bytes.Repeat([]byte{0x81}, maxItemDepth+1), 0x00)
	if _, err := readRawItem(bytes.NewReader(deep)); err == nil {
		t.Fatalf("Reading %d nested arrays succeeded", maxItemDepth+1)
	}
}

func TestReadFloat32Half(t *testing.T) {
	tests := []struct {
		h uint16
		f float32
	}{
		{0x0000, 0},
		{0x3c00, 1},
		{0xc000, -2},
		{0x7bff, 65504},
		{0x0001, float32(math.Pow(2, -24))},
		{0x8400, float32(-math.Pow(2, -14))},
		{0x7c00, float32(math.Inf(1))},
		{0xfc00, float32(math.Inf(-1))},
	}

	for _, test := range tests {
		data := []byte{0xf9, byte(test.h >> 8), byte(test.h)}
		if f, err := readFloat32(bytes.NewReader(data)); err != nil {
			t.Fatal(err)
		} else if f != test.f {
			t.Fatalf("readFloat32(%x) = %g, expected %g", data, f, test.f)
		}
	}

	if f, err := readFloat32(bytes.NewReader([]byte{0xf9, 0x7e, 0x00})); err != nil {
		t.Fatal(err)
	} else if !math.IsNaN(float64(f)) {
		t.Fatalf("readFloat32(f97e00) = %g, expected NaN", f)
	}
}
