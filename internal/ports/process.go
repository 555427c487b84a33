package ports

type ProcessProbe interface {
	Self() int
	Alive(pid int) bool
}
