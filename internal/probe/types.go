package probe

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	FormatName string
	Duration   float64
	Size       int64
}

// VideoStream holds the parsed properties of the primary video stream.
type VideoStream struct {
	Index    int
	Codec    string
	Width    int
	Height   int
	Duration float64
}

// Result is the fully parsed output of a single ffprobe JSON call.
// PrimaryVideo is the first non-attached-pic video stream (nil if none).
type Result struct {
	Format       FormatInfo
	PrimaryVideo *VideoStream
}

// Duration returns the container duration in seconds, falling back to the
// primary video stream duration when the container reports none.
func (r *Result) Duration() float64 {
	if r.Format.Duration > 0 {
		return r.Format.Duration
	}
	if r.PrimaryVideo != nil {
		return r.PrimaryVideo.Duration
	}
	return 0
}

// Resolution returns "WxH" for the primary video stream, or "unknown".
func (r *Result) Resolution() string {
	if r.PrimaryVideo == nil || r.PrimaryVideo.Width <= 0 || r.PrimaryVideo.Height <= 0 {
		return "unknown"
	}
	return itoa(r.PrimaryVideo.Width) + "x" + itoa(r.PrimaryVideo.Height)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
