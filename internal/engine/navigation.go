package engine

import "fmt"

// NavigationKind names a live navigation signal from the host page.
type NavigationKind string

const (
	NavAutoplay            NavigationKind = "autoplay"
	NavRecommendationClick NavigationKind = "recommendation_click"
	NavShorts              NavigationKind = "shorts"
	NavPageReload          NavigationKind = "page_reload"
	NavSearch              NavigationKind = "search"
	NavBackButton          NavigationKind = "back_button"
)

// navigationWeights are BehaviorPattern weights. Intentional navigation
// (search) counts against drift; passive consumption counts toward it.
var navigationWeights = map[NavigationKind]float64{
	NavAutoplay:            0.15,
	NavRecommendationClick: 0.10,
	NavShorts:              0.20,
	NavPageReload:          0.05,
	NavSearch:              -0.10,
	NavBackButton:          0.05,
}

// NavigationWeight returns the BehaviorPattern weight for kind.
func NavigationWeight(kind NavigationKind) (float64, error) {
	w, ok := navigationWeights[kind]
	if !ok {
		return 0, fmt.Errorf("unknown navigation kind %q", kind)
	}
	return w, nil
}
