package scan

import (
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

// feedBurst sends every character of s at scanner speed, then the
// terminator.
func feedBurst(f *Framer, clock *clockwork.FakeClock, s, terminator string) {
	for _, r := range s {
		clock.Advance(10 * time.Millisecond)
		f.HandleKey(string(r))
	}
	clock.Advance(10 * time.Millisecond)
	f.HandleKey(terminator)
}

func newTestFramer(opts ...Option) (*Framer, *clockwork.FakeClock, *[]Event) {
	clock := clockwork.NewFakeClock()
	f := NewFramer(clock, opts...)
	var events []Event
	f.OnScan(func(e Event) { events = append(events, e) })
	return f, clock, &events
}

func TestFramer_EmitsFrameOnTerminator(t *testing.T) {
	f, clock, events := newTestFramer()

	feedBurst(f, clock, "TRK01", KeyEnter)

	assert.Equal(t, []Event{{Barcode: "TRK01", Type: TypeTrak}}, *events)
}

func TestFramer_TabAlsoTerminates(t *testing.T) {
	f, clock, events := newTestFramer()

	feedBurst(f, clock, "*RESET*", KeyTab)

	assert.Equal(t, []Event{{Barcode: "*RESET*", Type: TypeActionReset}}, *events)
}

func TestFramer_TerminatorWithEmptyBufferIsIgnored(t *testing.T) {
	f, clock, events := newTestFramer()

	clock.Advance(10 * time.Millisecond)
	f.HandleKey(KeyEnter)
	f.HandleKey(KeyTab)

	assert.Empty(t, *events)
}

func TestFramer_InterKeyTimeoutDropsStaleBuffer(t *testing.T) {
	f, clock, events := newTestFramer()

	f.HandleKey("T")
	clock.Advance(10 * time.Millisecond)
	f.HandleKey("R")

	// The operator walked away mid-scan; the next burst starts fresh.
	clock.Advance(150 * time.Millisecond)
	feedBurst(f, clock, "K01", KeyEnter)

	assert.Equal(t, []Event{{Barcode: "K01", Type: TypeTrak}}, *events)
}

func TestFramer_CustomTimeout(t *testing.T) {
	f, clock, events := newTestFramer(WithTimeout(500 * time.Millisecond))

	f.HandleKey("A")
	clock.Advance(300 * time.Millisecond)
	f.HandleKey("B")
	clock.Advance(10 * time.Millisecond)
	f.HandleKey(KeyEnter)

	assert.Equal(t, []Event{{Barcode: "AB", Type: TypeTrak}}, *events)
}

func TestFramer_MultiCharacterKeysAreIgnored(t *testing.T) {
	f, clock, events := newTestFramer()

	f.HandleKey("Shift")
	clock.Advance(10 * time.Millisecond)
	f.HandleKey("A")
	clock.Advance(10 * time.Millisecond)
	f.HandleKey("Control")
	clock.Advance(10 * time.Millisecond)
	f.HandleKey("B")
	clock.Advance(10 * time.Millisecond)
	f.HandleKey(KeyEnter)

	assert.Equal(t, []Event{{Barcode: "AB", Type: TypeTrak}}, *events)
}

func TestFramer_Classification(t *testing.T) {
	f, clock, events := newTestFramer()
	f.RegisterBoxIDs([]string{"670252", "800607"})
	f.RegisterApplicationBarcodes([]string{"app-mb24"})
	f.RegisterStandardTimeBarcodes([]string{"TIME-1H"})

	testCases := []struct {
		barcode  string
		expected BarcodeType
	}{
		{"*RESET*", TypeActionReset},
		{"*OVENON*", TypeActionOvenOn},
		{"*ADD*", TypeActionAdd},
		{"*REMOVE*", TypeActionRemove},
		{"670252", TypeBox},
		{"APP-MB24", TypeApplication},
		{"app-mb24", TypeApplication},
		{"TIME-1H", TypeStandardTime},
		{"TRK1234", TypeTrak},
		{"trak99", TypeTrak},
		{"XYZ-UNKNOWN", TypeTrak},
	}

	for _, tc := range testCases {
		t.Run(tc.barcode, func(t *testing.T) {
			*events = (*events)[:0]
			feedBurst(f, clock, tc.barcode, KeyEnter)
			if assert.Len(t, *events, 1) {
				assert.Equal(t, tc.expected, (*events)[0].Type)
			}
		})
	}
}

func TestFramer_ActionKeywordsWinOverReferenceSets(t *testing.T) {
	f, clock, events := newTestFramer()
	f.RegisterBoxIDs([]string{"BOX-ADD"})

	feedBurst(f, clock, "BOX-ADD", KeyEnter)

	assert.Equal(t, TypeActionAdd, (*events)[0].Type)
}

func TestFramer_RegisterReplacesSetWholesale(t *testing.T) {
	f, clock, events := newTestFramer()
	f.RegisterBoxIDs([]string{"111111"})
	f.RegisterBoxIDs([]string{"222222"})

	feedBurst(f, clock, "111111", KeyEnter)
	feedBurst(f, clock, "222222", KeyEnter)

	assert.Equal(t, TypeTrak, (*events)[0].Type)
	assert.Equal(t, TypeBox, (*events)[1].Type)
}

func TestFramer_ScanModeDisabledIgnoresKeys(t *testing.T) {
	f, clock, events := newTestFramer()

	f.SetScanMode(false)
	feedBurst(f, clock, "TRK01", KeyEnter)
	assert.Empty(t, *events)

	f.SetScanMode(true)
	feedBurst(f, clock, "TRK02", KeyEnter)
	assert.Equal(t, []Event{{Barcode: "TRK02", Type: TypeTrak}}, *events)
}

func TestFramer_ModeFlipClearsPartialBuffer(t *testing.T) {
	f, clock, events := newTestFramer()

	f.HandleKey("T")
	clock.Advance(10 * time.Millisecond)
	f.HandleKey("R")
	f.SetScanMode(false)
	f.SetScanMode(true)

	feedBurst(f, clock, "K03", KeyEnter)

	assert.Equal(t, "K03", (*events)[0].Barcode)
}

func TestFramer_ModeChangedCallback(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var toggles []bool
	f := NewFramer(clock, WithModeChanged(func(enabled bool) {
		toggles = append(toggles, enabled)
	}))

	f.SetScanMode(false)
	f.SetScanMode(true)

	assert.Equal(t, []bool{false, true}, toggles)
	assert.True(t, f.ScanMode())
}

func TestFramer_ConsecutiveBursts(t *testing.T) {
	f, clock, events := newTestFramer()

	feedBurst(f, clock, "TRK01", KeyTab)
	feedBurst(f, clock, "TRK02", KeyTab)
	feedBurst(f, clock, "TRK03", KeyTab)

	var codes []string
	for _, e := range *events {
		codes = append(codes, e.Barcode)
	}
	assert.Equal(t, "TRK01,TRK02,TRK03", strings.Join(codes, ","))
}
