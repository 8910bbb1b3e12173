package extractor

// OrientationExtractor reads the EXIF orientation of an image file.
type OrientationExtractor interface {
	// ExtractOrientation returns the orientation stored in the file metadata.
	// OrientationUnspecified with a nil error means the file carries no orientation.
	ExtractOrientation(filePath string) (Orientation, error)
	// Name identifies the extractor in logs.
	Name() string
}

// Orientation is the value of the EXIF Orientation tag (0x0112).
type Orientation int

const (
	OrientationUnspecified Orientation = iota
	OrientationNormal
	OrientationFlipH
	OrientationRotate180
	OrientationFlipV
	OrientationTranspose
	OrientationRotate270
	OrientationTransverse
	OrientationRotate90
)

// Valid reports whether o is one of the eight values defined by EXIF.
func (o Orientation) Valid() bool {
	return o >= OrientationNormal && o <= OrientationRotate90
}

// SwapsAxes reports whether applying o exchanges width and height.
func (o Orientation) SwapsAxes() bool {
	switch o {
	case OrientationTranspose, OrientationRotate270, OrientationTransverse, OrientationRotate90:
		return true
	default:
		return false
	}
}

// String returns a human-readable description of the orientation.
func (o Orientation) String() string {
	switch o {
	case OrientationNormal:
		return "Normal"
	case OrientationFlipH:
		return "Mirror horizontal"
	case OrientationRotate180:
		return "Rotate 180"
	case OrientationFlipV:
		return "Mirror vertical"
	case OrientationTranspose:
		return "Mirror horizontal and rotate 270 CW"
	case OrientationRotate270:
		return "Rotate 90 CW"
	case OrientationTransverse:
		return "Mirror horizontal and rotate 90 CW"
	case OrientationRotate90:
		return "Rotate 270 CW"
	default:
		return "Unspecified"
	}
}

// fromTag converts a raw tag value, mapping out-of-range values to OrientationUnspecified.
func fromTag(v int64) Orientation {
	o := Orientation(v)
	if !o.Valid() {
		return OrientationUnspecified
	}
	return o
}
