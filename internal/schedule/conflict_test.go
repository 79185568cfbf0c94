package schedule

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/avialta/airline-reservation/internal/model"
)

func at(hour int) time.Time {
    return time.Date(2026, 3, 14, hour, 0, 0, 0, time.UTC)
}

func flight(id, aircraftID uint64, status string, dep, arr time.Time) model.Flight {
    return model.Flight{
        ID:           id,
        FlightNumber: "AV100",
        AircraftID:   aircraftID,
        Status:       status,
        DepartsAt:    dep,
        ArrivesAt:    arr,
    }
}

func TestCheckConflictOverlappingWindows(t *testing.T) {
    existing := []model.Flight{flight(1, 9, model.FlightStatusScheduled, at(10), at(12))}

    cases := []struct {
        name     string
        dep, arr time.Time
        conflict bool
    }{
        {"starts inside existing", at(11), at(13), true},
        {"ends inside existing", at(9), at(11), true},
        {"contains existing", at(9), at(13), true},
        {"contained by existing", at(10), at(11), true},
        {"back to back after", at(12), at(14), false},
        {"back to back before", at(8), at(10), false},
        {"disjoint", at(15), at(17), false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            cand := flight(2, 9, model.FlightStatusScheduled, tc.dep, tc.arr)
            err := CheckConflict(&cand, existing)
            if tc.conflict {
                var ce *ConflictError
                require.ErrorAs(t, err, &ce)
                assert.Equal(t, uint64(1), ce.ExistingID)
            } else {
                assert.NoError(t, err)
            }
        })
    }
}

func TestCheckConflictIgnoresSelf(t *testing.T) {
    existing := []model.Flight{flight(1, 9, model.FlightStatusScheduled, at(10), at(12))}
    cand := flight(1, 9, model.FlightStatusScheduled, at(10), at(12))

    assert.NoError(t, CheckConflict(&cand, existing))
}

func TestCheckConflictIgnoresCancelled(t *testing.T) {
    existing := []model.Flight{flight(1, 9, model.FlightStatusCancelled, at(10), at(12))}
    cand := flight(2, 9, model.FlightStatusScheduled, at(10), at(12))

    assert.NoError(t, CheckConflict(&cand, existing))
}

func TestCheckConflictIgnoresOtherAircraft(t *testing.T) {
    existing := []model.Flight{flight(1, 5, model.FlightStatusScheduled, at(10), at(12))}
    cand := flight(2, 9, model.FlightStatusScheduled, at(10), at(12))

    assert.NoError(t, CheckConflict(&cand, existing))
}
