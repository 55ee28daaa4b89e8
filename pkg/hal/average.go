package hal

// Averaging oversamples an ADC and returns the mean of N consecutive reads.
type Averaging struct {
	ADC ADC
	N   int
}

var _ ADC = Averaging{}

// ReadRaw implements ADC. The first failing read aborts the average.
func (a Averaging) ReadRaw() (int, error) {
	n := a.N
	if n <= 1 {
		return a.ADC.ReadRaw()
	}

	var sum int64
	for i := 0; i < n; i++ {
		v, err := a.ADC.ReadRaw()
		if err != nil {
			return 0, err
		}
		sum += int64(v)
	}
	return int(sum / int64(n)), nil
}
