package adc

import "testing"

func TestMCP3008Request(t *testing.T) {
	cases := []struct {
		channel int
		second  byte
	}{
		{0, 0x80},
		{1, 0x90},
		{5, 0xD0},
		{7, 0xF0},
	}
	for _, tc := range cases {
		buf := mcp3008Request(tc.channel)
		if len(buf) != 3 || buf[0] != 0x01 || buf[1] != tc.second || buf[2] != 0 {
			t.Errorf("channel %d: request = % x, want 01 %02x 00", tc.channel, buf, tc.second)
		}
	}
}

func TestMCP3008Decode(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		want uint16
	}{
		{"zero", []byte{0xFF, 0x00, 0x00}, 0},
		{"full_scale", []byte{0xFF, 0x03, 0xFF}, MaxValue},
		{"threshold_300", []byte{0x00, 0x01, 0x2C}, 300},
		{"ignores_high_bits", []byte{0x00, 0xFC | 0x01, 0x40}, 320},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mcp3008Decode(tc.buf); got != tc.want {
				t.Errorf("decode(% x) = %d, want %d", tc.buf, got, tc.want)
			}
		})
	}
}

func TestMockReader(t *testing.T) {
	r := &MockReader{Values: map[int]uint16{0: 50, 1: 60}}

	left, err := r.ReadChannel(0)
	if err != nil || left != 50 {
		t.Errorf("channel 0 = %d,%v, want 50", left, err)
	}
	unset, err := r.ReadChannel(3)
	if err != nil || unset != 0 {
		t.Errorf("unset channel = %d,%v, want 0", unset, err)
	}
}

func TestMockReader_ChannelRange(t *testing.T) {
	r := &MockReader{}
	for _, ch := range []int{-1, 8, 100} {
		if _, err := r.ReadChannel(ch); err == nil {
			t.Errorf("expected error for channel %d", ch)
		}
	}
}

func TestNewReader_Mock(t *testing.T) {
	r, err := NewReader(true, SPIConfig{})
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, ok := r.(*MockReader); !ok {
		t.Errorf("NewReader(mock) returned %T, want *MockReader", r)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
