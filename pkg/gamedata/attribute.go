package gamedata

type Attribute struct {
	Name     string
	Resource string
	Default  float64
	Min      float64
	Max      float64
}
