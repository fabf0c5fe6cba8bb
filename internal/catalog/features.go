package catalog

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Known specification keys. Unknown keys are kept as-is.
const (
	FeatureBatteryLife          = "battery_life"
	FeatureChargingCaseBattery  = "charging_case_battery"
	FeatureBluetoothVersion     = "bluetooth_version"
	FeatureDriverSize           = "driver_size"
	FeatureFrequencyResponse    = "frequency_response"
	FeatureImpedance            = "impedance"
	FeatureWaterResistance      = "water_resistance"
	FeatureNoiseCancellation    = "noise_cancellation"
	FeatureTransparencyMode     = "transparency_mode"
	FeatureWirelessCharging     = "wireless_charging"
	FeatureFastCharging         = "fast_charging"
	FeatureCodecSupport         = "codec_support"
	FeatureMicrophone           = "microphone"
	FeatureTouchControls        = "touch_controls"
	FeatureVoiceAssistant       = "voice_assistant"
	FeatureMultipointConnection = "multipoint_connection"
	FeatureWarranty             = "warranty"
	FeatureLatency              = "latency"
	FeatureRGBLighting          = "rgb_lighting"
	FeatureSurroundSound        = "surround_sound"
)

var featureLabels = map[string]string{
	FeatureBatteryLife:          "Battery Life (Single Charge)",
	FeatureChargingCaseBattery:  "Total Battery with Case",
	FeatureBluetoothVersion:     "Bluetooth Version",
	FeatureDriverSize:           "Driver Size",
	FeatureFrequencyResponse:    "Frequency Response",
	FeatureImpedance:            "Impedance",
	FeatureWaterResistance:      "Water Resistance",
	FeatureNoiseCancellation:    "Active Noise Cancellation",
	FeatureTransparencyMode:     "Transparency Mode",
	FeatureWirelessCharging:     "Wireless Charging",
	FeatureFastCharging:         "Fast Charging",
	FeatureCodecSupport:         "Codec Support",
	FeatureMicrophone:           "Built-in Microphone",
	FeatureTouchControls:        "Touch Controls",
	FeatureVoiceAssistant:       "Voice Assistant Support",
	FeatureMultipointConnection: "Multipoint Connection",
	FeatureWarranty:             "Warranty",
	FeatureLatency:              "Latency",
	FeatureRGBLighting:          "RGB Lighting",
	FeatureSurroundSound:        "Surround Sound",
}

// FeatureLabel returns the display label of a known key, or ok=false.
func FeatureLabel(key string) (string, bool) {
	label, ok := featureLabels[key]
	return label, ok
}

type FeatureKind uint8

const (
	FeatureString FeatureKind = iota + 1
	FeatureBool
	FeatureNumber
)

// FeatureValue holds exactly one of a string, a boolean or a number.
type FeatureValue struct {
	Kind FeatureKind
	Str  string
	Bool bool
	Num  float64
}

func StringFeature(s string) FeatureValue  { return FeatureValue{Kind: FeatureString, Str: s} }
func BoolFeature(b bool) FeatureValue      { return FeatureValue{Kind: FeatureBool, Bool: b} }
func NumberFeature(n float64) FeatureValue { return FeatureValue{Kind: FeatureNumber, Num: n} }

// String renders the value for prompts and templates.
func (v FeatureValue) String() string {
	switch v.Kind {
	case FeatureBool:
		return strconv.FormatBool(v.Bool)
	case FeatureNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return v.Str
	}
}

func (v FeatureValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case FeatureBool:
		return json.Marshal(v.Bool)
	case FeatureNumber:
		return json.Marshal(v.Num)
	default:
		return json.Marshal(v.Str)
	}
}

func (v *FeatureValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = StringFeature("")
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringFeature(s)
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*v = BoolFeature(data[0] == 't')
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("feature value must be a string, boolean or number: %s", data)
		}
		*v = NumberFeature(n)
	}
	return nil
}

// UnmarshalYAML accepts scalar nodes; the YAML decoder resolves their tag.
func (v *FeatureValue) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case bool:
		*v = BoolFeature(t)
	case int:
		*v = NumberFeature(float64(t))
	case float64:
		*v = NumberFeature(t)
	case string:
		*v = StringFeature(t)
	case nil:
		*v = StringFeature("")
	default:
		return fmt.Errorf("unsupported feature value %T", raw)
	}
	return nil
}

type Features map[string]FeatureValue

// Keys returns the keys in lexical order.
func (f Features) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value implements driver.Valuer for the JSONB column.
func (f Features) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner for the JSONB column.
func (f *Features) Scan(src any) error {
	var data []byte
	switch t := src.(type) {
	case nil:
		*f = Features{}
		return nil
	case []byte:
		data = t
	case string:
		data = []byte(t)
	default:
		return fmt.Errorf("scan features: unsupported type %T", src)
	}
	out := Features{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("scan features: %w", err)
	}
	*f = out
	return nil
}
