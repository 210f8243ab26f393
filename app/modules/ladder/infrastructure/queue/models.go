package ladderqueue

import "github.com/riverqueue/river"

// QueueName is the River queue reprojection jobs run on.
const QueueName = "ladder"

// ReprojectLadderJob replays a ladder's match ledger into a fresh player table.
type ReprojectLadderJob struct {
	Ladder string `json:"ladder"`
}

// Kind returns the job type identifier for River
func (ReprojectLadderJob) Kind() string { return "ladder_reproject" }

// InsertOpts places the job on the ladder queue. Jobs are not unique: a
// removal committed while a replay is running needs a replay of its own.
func (ReprojectLadderJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: 5,
	}
}
