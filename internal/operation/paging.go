package operation

const (
	DefaultTake = 10
	MaxTake     = 100
)

// Paging is the skip/take window shared by every list operation. A zero
// Take means DefaultTake.
type Paging struct {
	Skip int `json:"skip"`
	Take int `json:"take"`
}

func (p Paging) Check(c *Checker) {
	c.Check(p.Skip >= 0, "skip", "Skip must be a non-negative integer.")
	c.Check(p.Take == 0 || (p.Take >= 1 && p.Take <= MaxTake), "take", "Take must be between 1 and 100.")
}

func (p Paging) Limit() int {
	if p.Take <= 0 {
		return DefaultTake
	}
	if p.Take > MaxTake {
		return MaxTake
	}
	return p.Take
}

func (p Paging) Offset() int {
	if p.Skip < 0 {
		return 0
	}
	return p.Skip
}
