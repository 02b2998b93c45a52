package service

import "github.com/padraicbc/runcrew/models"

// Totals is the derived summary of a set of run records.
type Totals struct {
	Distance    float64 // km, summed
	RunningTime int     // seconds, summed
	Pace        int     // seconds/km, sum of paces integer-divided by Count
	Count       int
}

// Aggregate sums distance and running time and averages pace per record.
// The average is unweighted and truncates, so 620/2 = 310 and 601/2 = 300.
func Aggregate(records []models.RunRecord) Totals {
	var t Totals
	sumPace := 0
	for _, r := range records {
		t.Distance += r.Distance
		t.RunningTime += r.RunningTime
		sumPace += r.Pace
	}
	t.Count = len(records)
	if t.Count > 0 {
		t.Pace = sumPace / t.Count
	}
	return t
}

// Meets reports whether the totals reach every target of g.
// A zero target pace means the goal has no pace requirement.
func (t Totals) Meets(g *models.RunGoal) bool {
	if t.Count == 0 {
		return false
	}
	if t.Distance < g.TargetDistance || t.RunningTime < g.TargetTime {
		return false
	}
	return g.TargetPace == 0 || float64(t.Pace) <= g.TargetPace*60
}
