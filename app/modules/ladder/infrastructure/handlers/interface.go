package ladderhandlers

import "net/http"

// Handlers serves the ladder JSON API.
type Handlers interface {
	HandleExists(w http.ResponseWriter, r *http.Request)
	HandleMatchShape(w http.ResponseWriter, r *http.Request)
	HandleSettings(w http.ResponseWriter, r *http.Request)
	HandleUpdateSettings(w http.ResponseWriter, r *http.Request)
	HandleRanking(w http.ResponseWriter, r *http.Request)
	HandleMatches(w http.ResponseWriter, r *http.Request)
	HandleGame(w http.ResponseWriter, r *http.Request)
	HandleRemove(w http.ResponseWriter, r *http.Request)
	HandleCreate(w http.ResponseWriter, r *http.Request)
	HandleOwned(w http.ResponseWriter, r *http.Request)
	HandleOwnedBy(w http.ResponseWriter, r *http.Request)
	HandleSuggestPlayers(w http.ResponseWriter, r *http.Request)
	HandleHistory(w http.ResponseWriter, r *http.Request)
	HandleHistoryChart(w http.ResponseWriter, r *http.Request)
	HandleExport(w http.ResponseWriter, r *http.Request)
	HandleReproject(w http.ResponseWriter, r *http.Request)
}
