package device

var hostFeatures []string

func features() []string {
	return append([]string(nil), hostFeatures...)
}
