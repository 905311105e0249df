package orientation

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		sensor  int
		facing  LensFacing
		display DisplayRotation
		want    Transform
	}{
		{"front 90 at 0", 90, LensFront, Rotation0, Transform{90, true, false}},
		{"back 90 at 0", 90, LensBack, Rotation0, Transform{90, false, true}},
		{"back 0 at 270", 0, LensBack, Rotation270, Transform{90, false, true}},
		{"front 270 at 90", 270, LensFront, Rotation90, Transform{0, true, false}},
		{"front 90 at 180", 90, LensFront, Rotation180, Transform{270, true, false}},
		{"back 270 at 90", 270, LensBack, Rotation90, Transform{180, false, true}},
		{"external 90 at 90", 90, LensExternal, Rotation90, Transform{0, false, false}},
		{"negative sensor", -90, LensBack, Rotation0, Transform{270, false, true}},
		{"sensor above 360", 450, LensFront, Rotation0, Transform{90, true, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.sensor, tt.facing, tt.display)
			if got != tt.want {
				t.Errorf("Resolve(%d, %s, %d°) = %+v, want %+v",
					tt.sensor, tt.facing, tt.display.Degrees(), got, tt.want)
			}
		})
	}
}

func TestResolve_RotationAlwaysCanonical(t *testing.T) {
	for sensor := 0; sensor < 360; sensor += 90 {
		for _, d := range []DisplayRotation{Rotation0, Rotation90, Rotation180, Rotation270} {
			for _, f := range []LensFacing{LensFront, LensBack, LensExternal} {
				r := Resolve(sensor, f, d).RotationDegrees
				if r != 0 && r != 90 && r != 180 && r != 270 {
					t.Errorf("Resolve(%d, %s, %d) rotation %d not canonical", sensor, f, d.Degrees(), r)
				}
			}
		}
	}
}

func TestDisplayRotationFromDegrees(t *testing.T) {
	tests := []struct {
		deg     int
		want    DisplayRotation
		wantErr bool
	}{
		{0, Rotation0, false},
		{90, Rotation90, false},
		{180, Rotation180, false},
		{270, Rotation270, false},
		{-90, Rotation270, false},
		{45, Rotation0, true},
	}
	for _, tt := range tests {
		got, err := DisplayRotationFromDegrees(tt.deg)
		if (err != nil) != tt.wantErr {
			t.Errorf("DisplayRotationFromDegrees(%d) error = %v, wantErr %v", tt.deg, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("DisplayRotationFromDegrees(%d) = %v, want %v", tt.deg, got, tt.want)
		}
	}
}

func TestParseLensFacing(t *testing.T) {
	tests := []struct {
		in      string
		want    LensFacing
		wantErr bool
	}{
		{"front", LensFront, false},
		{"BACK", LensBack, false},
		{"rear", LensBack, false},
		{"", LensExternal, false},
		{"sideways", LensExternal, true},
	}
	for _, tt := range tests {
		got, err := ParseLensFacing(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLensFacing(%q) = %v, %v", tt.in, got, err)
		}
	}
}
