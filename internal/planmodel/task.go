package planmodel

// Task is the common view over the two closed variants, Epic and Feature.
// There is no third variant and no dynamic registration: a type switch on
// the concrete *Epic/*Feature is always exhaustive.
type Task interface {
	TaskID() string
	TaskStatus() Status
	SetStatus(Status)
	Dependencies() []string
}

func (e *Epic) TaskID() string          { return e.ID }
func (e *Epic) TaskStatus() Status      { return e.Status }
func (e *Epic) SetStatus(s Status)      { e.Status = s }
func (e *Epic) Dependencies() []string  { return e.DependsOn }

func (f *Feature) TaskID() string         { return f.ID }
func (f *Feature) TaskStatus() Status     { return f.Status }
func (f *Feature) SetStatus(s Status)     { f.Status = s }
func (f *Feature) Dependencies() []string { return f.DependsOn }

// TaskByID searches epics first, then each epic's features, and returns the
// matching Task variant directly (never a copy).
func TaskByID(g *Graph, id string) Task {
	for _, e := range g.Epics {
		if e.ID == id {
			return e
		}
		for _, f := range e.Features {
			if f.ID == id {
				return f
			}
		}
	}
	return nil
}

// OwningEpic returns the Epic that owns the Feature with id featureID, or
// nil if id names an Epic (or nothing at all).
func OwningEpic(g *Graph, featureID string) *Epic {
	for _, e := range g.Epics {
		if f := e.FeatureByID(featureID); f != nil {
			return e
		}
	}
	return nil
}
