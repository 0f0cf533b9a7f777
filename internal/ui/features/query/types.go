package query

import (
	"github.com/kg-project/sparqlq/internal/controller"
	"github.com/kg-project/sparqlq/internal/ui/features/query/components"
)

// ExecuteSignals represents the signals sent when running a query.
type ExecuteSignals struct {
	Query string `json:"query"`
}

// ExampleSignals represents the signals sent when picking an example.
type ExampleSignals struct {
	Example string `json:"example"`
}

func newStateData(st controller.State) components.StateData {
	d := components.StateData{
		Phase:   st.Phase.String(),
		Loading: st.Phase == controller.PhaseLoading,
		Success: st.Phase == controller.PhaseSuccess,
		Failure: st.Phase == controller.PhaseFailure,
		Error:   st.Error,
	}
	if d.Success && st.Result != nil {
		d.Variables = st.Result.Variables
		d.Rows = st.Result.Cells()
		d.RowCount = st.Result.Len()
	}
	return d
}
