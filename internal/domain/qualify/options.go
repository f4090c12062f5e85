package qualify

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithTimeType selects which standards are indexed (default "QT").
func WithTimeType(timeType string) Option {
	return func(c *Classifier) {
		if timeType != "" {
			c.timeType = timeType
		}
	}
}

// WithFallbacks enables or disables the age fallbacks used when a category
// has no standard of its own.
func WithFallbacks(enabled bool) Option {
	return func(c *Classifier) {
		c.fallbacks = enabled
	}
}

// WithOpenFallbackAge sets the category whose standard Open events borrow.
func WithOpenFallbackAge(age int) Option {
	return func(c *Classifier) {
		if age > 0 {
			c.openFallbackAge = age
		}
	}
}

// WithMinStandardAge sets the youngest category that has standards; younger
// categories borrow its standard.
func WithMinStandardAge(age int) Option {
	return func(c *Classifier) {
		if age > 0 {
			c.minStandardAge = age
		}
	}
}
