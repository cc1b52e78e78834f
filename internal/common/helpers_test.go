package common

import (
	"testing"
	"time"
)

func TestPluralizePoints(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{1, "очко"},
		{2, "очка"},
		{4, "очка"},
		{5, "очков"},
		{11, "очков"},
		{12, "очков"},
		{21, "очко"},
		{22, "очка"},
		{100, "очков"},
		{101, "очко"},
		{0, "очков"},
		{-5, "очков"},
		{-1, "очко"},
	}

	for _, c := range cases {
		if got := PluralizePoints(c.n); got != c.want {
			t.Errorf("PluralizePoints(%d) = %q, ожидалось %q", c.n, got, c.want)
		}
	}
}

func TestFormatPoints(t *testing.T) {
	if got := FormatPoints(150); got != "150 очков" {
		t.Errorf("FormatPoints(150) = %q", got)
	}
	if got := FormatPoints(21); got != "21 очко" {
		t.Errorf("FormatPoints(21) = %q", got)
	}
}

func TestPluralizeMessages(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{1, "сообщение"},
		{3, "сообщения"},
		{14, "сообщений"},
	}
	for _, c := range cases {
		if got := PluralizeMessages(c.n); got != c.want {
			t.Errorf("PluralizeMessages(%d) = %q, ожидалось %q", c.n, got, c.want)
		}
	}
}

func TestPluralizeMinutes(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{1, "минута"},
		{2, "минуты"},
		{60, "минут"},
	}
	for _, c := range cases {
		if got := PluralizeMinutes(c.n); got != c.want {
			t.Errorf("PluralizeMinutes(%d) = %q, ожидалось %q", c.n, got, c.want)
		}
	}
}

func TestFormatDateTime(t *testing.T) {
	moment := time.Date(2025, 8, 1, 15, 4, 0, 0, time.UTC)
	if got := FormatDateTime(moment); got != "01.08.2025 15:04" {
		t.Errorf("FormatDateTime = %q", got)
	}
	if got := FormatDate(moment); got != "01.08.2025" {
		t.Errorf("FormatDate = %q", got)
	}
}
