package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// clearFrame returns a frame with one clear, calm-ish cell at (10, 20).
func clearFrame() *Frame {
	f := NewFrame()
	f.Version = Version
	f.Time = TimeTag{Day: 26, Hour: 12}
	f.Fields = FieldShower | FieldVisibility | FieldFog
	f.Type.Fill(WeatherClear)
	f.Pressure.Fill(1013)
	f.Temperature.Fill(20)
	f.Visibility.Fill(20)
	f.Cloud.Size.Fill(5)
	f.Wind[20][10][0] = Vector{Direction: 90, Speed: 10}
	return f
}

func TestMetar(t *testing.T) {
	tests := []struct {
		name   string
		units  UnitSystem
		mutate func(f *Frame)
		want   string
	}{
		{
			name: "clear sky",
			want: "261200Z 09010KT 9999 CLR 20/10 Q1013",
		},
		{
			name:  "clear sky imperial",
			units: Imperial,
			want:  "261200Z 09010KT 10SM CLR 20/10 A2991",
		},
		{
			name:   "visibility just under the cap",
			mutate: func(f *Frame) { f.Visibility[20][10] = 9.999 },
			want:   "261200Z 09010KT 9999 CLR 20/10 Q1013",
		},
		{
			name:   "visibility field absent",
			mutate: func(f *Frame) { f.Fields = FieldShower },
			want:   "261200Z 09010KT 9999 CLR 20/10 Q1013",
		},
		{
			name:   "imperial visibility in miles",
			units:  Imperial,
			mutate: func(f *Frame) { f.Visibility[20][10] = 4.8 },
			want:   "261200Z 09010KT 03SM HZ CLR 20/10 A2991",
		},
		{
			name: "haze without a fog layer",
			mutate: func(f *Frame) {
				f.Type[20][10] = WeatherFair
				f.Visibility[20][10] = 2.5
				f.Cloud.Cover[20][10] = 3
				f.Cloud.Base[20][10] = 5000
			},
			want: "261200Z 09010KT 2500 HZ SCT050 20/14 Q1013",
		},
		{
			name: "no haze when the fog field is absent",
			mutate: func(f *Frame) {
				f.Fields = FieldShower | FieldVisibility
				f.Visibility[20][10] = 2.5
			},
			want: "261200Z 09010KT 2500 CLR 20/10 Q1013",
		},
		{
			name: "haze under high fog",
			mutate: func(f *Frame) {
				f.Visibility[20][10] = 4.26
				f.Fog[20][10] = 2000
			},
			want: "261200Z 09010KT 4300 HZ CLR 20/10 Q1013",
		},
		{
			name: "low fog overrides visibility",
			mutate: func(f *Frame) {
				f.Type[20][10] = WeatherFair
				f.Temperature[20][10] = 5
				f.Fog[20][10] = 200
				f.Cloud.Cover[20][10] = 3
				f.Cloud.Base[20][10] = 3000
			},
			want: "261200Z 09010KT 0300 FG SCT002 05/05 Q1013",
		},
		{
			name: "freezing fog",
			mutate: func(f *Frame) {
				f.Type[20][10] = WeatherFair
				f.Temperature[20][10] = -3
				f.Fog[20][10] = 200
				f.Cloud.Cover[20][10] = 3
				f.Cloud.Base[20][10] = 3000
			},
			want: "261200Z 09010KT 0300 FZFG SCT002 M03/M03 Q1013",
		},
		{
			name: "mist",
			mutate: func(f *Frame) {
				f.Type[20][10] = WeatherPoor
				f.Visibility[20][10] = 1
				f.Fog[20][10] = 250
				f.Cloud.Cover[20][10] = 5
				f.Cloud.Base[20][10] = 5000
			},
			want: "261200Z 09010KT 1000 BR BKN003 20/20 Q1013",
		},
		{
			name: "thunderstorm",
			mutate: func(f *Frame) {
				f.Type[20][10] = WeatherInclement
				f.Shower[20][10] = 1
				f.Temperature[20][10] = 18
				f.Pressure[20][10] = 998
				f.Visibility[20][10] = 8
				f.Cloud.Type[20][10] = CloudCumulonimbus
				f.Cloud.Size[20][10] = 0.5
				f.Cloud.Cover[20][10] = 10
				f.Cloud.Base[20][10] = 2500
			},
			want: "261200Z 09010KT 8000 TSRA OVC025CB 18/18 Q0998",
		},
		{
			name: "rain showers",
			mutate: func(f *Frame) {
				f.Type[20][10] = WeatherInclement
				f.Shower[20][10] = 1
				f.Cloud.Cover[20][10] = 7
				f.Cloud.Base[20][10] = 4000
			},
			want: "261200Z 09010KT 9999 SHRA BKN040 20/20 Q1013",
		},
		{
			name: "heavy rain",
			mutate: func(f *Frame) {
				f.Type[20][10] = WeatherInclement
				f.Cloud.Type[20][10] = CloudCumulonimbus
				f.Cloud.Cover[20][10] = 9
				f.Cloud.Base[20][10] = 1200
			},
			want: "261200Z 09010KT 9999 +RA OVC012CB 20/20 Q1013",
		},
		{
			name: "snow",
			mutate: func(f *Frame) {
				f.Type[20][10] = WeatherInclement
				f.Shower[20][10] = 1
				f.Temperature[20][10] = -5
				f.Cloud.Cover[20][10] = 6
				f.Cloud.Base[20][10] = 1500
			},
			want: "261200Z 09010KT 9999 SN BKN015 M05/M05 Q1013",
		},
		{
			name: "freezing rain",
			mutate: func(f *Frame) {
				f.Type[20][10] = WeatherInclement
				f.Temperature[20][10] = -1
				f.Cloud.Cover[20][10] = 5
				f.Cloud.Base[20][10] = 800
			},
			want: "261200Z 09010KT 9999 FZRA BKN008 M01/M01 Q1013",
		},
		{
			name: "few clouds lower the dewpoint",
			mutate: func(f *Frame) {
				f.Cloud.Cover[20][10] = 1
				f.Cloud.Base[20][10] = 5000
			},
			want: "261200Z 09010KT 9999 FEW050 20/14 Q1013",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := clearFrame()
			if tt.mutate != nil {
				tt.mutate(f)
			}
			assert.Equal(t, tt.want, Metar(f, 10, 20, tt.units))
		})
	}
}

func TestMetarUnavailable(t *testing.T) {
	assert.Empty(t, Metar(NewFrame(), 10, 20, Metric))
	assert.Empty(t, Metar(nil, 10, 20, Metric))
	assert.Empty(t, Metar(clearFrame(), 59, 0, Metric))
	assert.Empty(t, Metar(clearFrame(), 0, -1, Metric))
}

func TestParseUnitSystem(t *testing.T) {
	tests := []struct {
		in      string
		want    UnitSystem
		wantErr bool
	}{
		{"", Metric, false},
		{"metric", Metric, false},
		{" Imperial ", Imperial, false},
		{"nautical", Metric, true},
	}
	for _, tt := range tests {
		got, err := ParseUnitSystem(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.want.String(), got.String())
	}
	assert.Equal(t, "imperial", Imperial.String())
}
