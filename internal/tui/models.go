package tui

import (
	"strings"

	"github.com/pders01/cinematch/internal/recommend"
)

type View int

const (
	ViewMain View = iota
	ViewDetail
)

// Region is what fills the area below the search panel.
type Region int

const (
	RegionIdle Region = iota
	RegionSplash
	RegionSkeleton
	RegionError
	RegionResults
	RegionEmpty
)

func (r Region) String() string {
	switch r {
	case RegionSplash:
		return "splash"
	case RegionSkeleton:
		return "skeleton"
	case RegionError:
		return "error"
	case RegionResults:
		return "results"
	case RegionEmpty:
		return "empty"
	default:
		return "idle"
	}
}

// State is the interaction state owned by App. It is changed only by the
// App operations and by the messages their commands produce.
type State struct {
	Query          string
	Threshold      Threshold
	Results        []recommend.Movie
	CorrectedTitle string
	Loading        bool
	Err            string
	Searched       bool
	DarkMode       bool
	SplashDone     bool
}

// SelectRegion picks the single region that is visible for s.
func SelectRegion(s State) Region {
	switch {
	case !s.SplashDone:
		return RegionSplash
	case s.Loading:
		return RegionSkeleton
	case s.Err != "":
		return RegionError
	case len(s.Results) > 0:
		return RegionResults
	case s.Searched && strings.TrimSpace(s.Query) != "":
		return RegionEmpty
	default:
		return RegionIdle
	}
}

// ShowBanner reports whether the corrected-title banner accompanies the
// region.
func ShowBanner(s State) bool {
	return s.SplashDone && s.CorrectedTitle != "" && !s.Loading && s.Err == ""
}
