// Package reconciler keeps a client-side copy of a board in step with the
// server's event stream. Events that patch a single entity are applied in
// place and are idempotent; anything the view cannot apply with certainty is
// answered with a full snapshot refetch.
package reconciler

import (
	"encoding/json"
	"reflect"
	"sort"

	"github.com/google/uuid"

	"taskflow-board-api/internal/domain"
	"taskflow-board-api/internal/dto"
	"taskflow-board-api/internal/position"
	"taskflow-board-api/internal/realtime"
)

// Outcome reports what applying an event did to the view
type Outcome int

const (
	// Applied means the view changed
	Applied Outcome = iota
	// Unchanged means the event was already reflected or did not concern this board
	Unchanged
	// NeedsRefetch means the view cannot apply the event and must be rebuilt
	NeedsRefetch
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Unchanged:
		return "unchanged"
	default:
		return "refetch"
	}
}

// ListView is a list with its tasks in display order
type ListView struct {
	dto.ListResponse
	Tasks []dto.TaskResponse
}

// View is the local cache of one board
type View struct {
	Board    dto.BoardResponse
	Lists    []*ListView
	Activity []dto.ActivityResponse

	activityCap int
}

// NewView builds a view from a server snapshot
func NewView(snap *dto.BoardSnapshotResponse, activityCap int) *View {
	v := &View{Board: snap.Board, activityCap: activityCap}
	for _, l := range snap.Lists {
		tasks := make([]dto.TaskResponse, len(l.Tasks))
		copy(tasks, l.Tasks)
		v.Lists = append(v.Lists, &ListView{ListResponse: l.ListResponse, Tasks: tasks})
	}
	return v
}

// Clone returns a deep copy safe to hand to renderers
func (v *View) Clone() *View {
	out := &View{Board: v.Board, activityCap: v.activityCap}
	for _, l := range v.Lists {
		tasks := make([]dto.TaskResponse, len(l.Tasks))
		copy(tasks, l.Tasks)
		out.Lists = append(out.Lists, &ListView{ListResponse: l.ListResponse, Tasks: tasks})
	}
	out.Activity = append([]dto.ActivityResponse(nil), v.Activity...)
	return out
}

// List returns the list with the given id
func (v *View) List(id uuid.UUID) *ListView {
	for _, l := range v.Lists {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// FindTask returns the list holding the task and the task's index in it
func (v *View) FindTask(id uuid.UUID) (*ListView, int) {
	for _, l := range v.Lists {
		for i, t := range l.Tasks {
			if t.ID == id {
				return l, i
			}
		}
	}
	return nil, -1
}

// Apply reduces one envelope into the view
func (v *View) Apply(env realtime.Envelope) Outcome {
	if env.BoardID != v.Board.ID {
		return Unchanged
	}

	switch env.Event {
	case domain.EventTaskCreated:
		var task dto.TaskResponse
		if !decode(env.Payload, &task) {
			return NeedsRefetch
		}
		return v.upsertTask(task)
	case domain.EventTaskUpdated:
		var task dto.TaskResponse
		if !decode(env.Payload, &task) {
			return NeedsRefetch
		}
		return v.updateTask(task)
	case domain.EventTaskDeleted:
		var ev dto.TaskDeletedEvent
		if !decode(env.Payload, &ev) {
			return NeedsRefetch
		}
		return v.removeTask(ev.TaskID)
	case domain.EventTaskMoved:
		var ev dto.TaskMovedEvent
		if !decode(env.Payload, &ev) {
			return NeedsRefetch
		}
		return v.ApplyMove(ev.TaskID, ev.SourceListID, ev.TargetListID, ev.NewPosition)
	case domain.EventTaskAssigned, domain.EventTaskUnassigned:
		var ev dto.TaskAssignmentEvent
		if !decode(env.Payload, &ev) {
			return NeedsRefetch
		}
		return v.setAssignee(ev.TaskID, ev.UserID, env.Event == domain.EventTaskAssigned)
	case domain.EventListCreated:
		var list dto.ListResponse
		if !decode(env.Payload, &list) {
			return NeedsRefetch
		}
		return v.upsertList(list)
	case domain.EventListUpdated:
		var list dto.ListResponse
		if !decode(env.Payload, &list) {
			return NeedsRefetch
		}
		if v.List(list.ID) == nil {
			return NeedsRefetch
		}
		return v.upsertList(list)
	case domain.EventListDeleted:
		var ev dto.ListDeletedEvent
		if !decode(env.Payload, &ev) {
			return NeedsRefetch
		}
		return v.removeList(ev.ListID)
	case domain.EventActivityNew:
		var activity dto.ActivityResponse
		if !decode(env.Payload, &activity) {
			return NeedsRefetch
		}
		return v.prependActivity(activity)
	default:
		return NeedsRefetch
	}
}

// ApplyMove places the task at newPosition in the target list. The move is
// applied only when the outcome is certain; a task that is not where the
// event says it came from, or a position the local list cannot honour,
// asks for a refetch.
func (v *View) ApplyMove(taskID, sourceListID, targetListID uuid.UUID, newPosition int) Outcome {
	target := v.List(targetListID)
	if target == nil || v.List(sourceListID) == nil {
		return NeedsRefetch
	}
	current, idx := v.FindTask(taskID)
	if current == nil {
		return NeedsRefetch
	}
	if current == target && idx == newPosition-1 {
		return Unchanged
	}
	if current.ID != sourceListID && current != target {
		return NeedsRefetch
	}

	task := current.Tasks[idx]
	current.Tasks = append(current.Tasks[:idx:idx], current.Tasks[idx+1:]...)

	order := make(position.Sequence, len(target.Tasks))
	for i, t := range target.Tasks {
		order[i] = t.ID
	}
	placed := position.PlaceAt(order, taskID, position.IndexFromPosition(newPosition))
	if placed.IndexOf(taskID) != newPosition-1 {
		// undo and let the snapshot decide
		current.Tasks = insertTask(current.Tasks, idx, task)
		return NeedsRefetch
	}

	task.ListID = target.ID
	byID := make(map[uuid.UUID]dto.TaskResponse, len(target.Tasks)+1)
	for _, t := range target.Tasks {
		byID[t.ID] = t
	}
	byID[taskID] = task
	target.Tasks = target.Tasks[:0:0]
	for _, id := range placed {
		target.Tasks = append(target.Tasks, byID[id])
	}

	renumber(current)
	if current != target {
		renumber(target)
	}
	return Applied
}

func (v *View) upsertTask(task dto.TaskResponse) Outcome {
	list := v.List(task.ListID)
	if list == nil {
		return NeedsRefetch
	}
	if holder, idx := v.FindTask(task.ID); holder != nil {
		if holder != list {
			return NeedsRefetch
		}
		// a replayed create carries stale placement; moves own it
		task.Position = holder.Tasks[idx].Position
		if reflect.DeepEqual(holder.Tasks[idx], task) {
			return Unchanged
		}
		holder.Tasks[idx] = task
		return Applied
	}
	at := sort.Search(len(list.Tasks), func(i int) bool { return list.Tasks[i].Position > task.Position })
	list.Tasks = insertTask(list.Tasks, at, task)
	return Applied
}

func (v *View) updateTask(task dto.TaskResponse) Outcome {
	holder, idx := v.FindTask(task.ID)
	if holder == nil || holder.ID != task.ListID {
		return NeedsRefetch
	}
	// placement is owned by move events
	task.Position = holder.Tasks[idx].Position
	holder.Tasks[idx] = task
	return Applied
}

func (v *View) removeTask(taskID uuid.UUID) Outcome {
	holder, idx := v.FindTask(taskID)
	if holder == nil {
		return Unchanged
	}
	holder.Tasks = append(holder.Tasks[:idx:idx], holder.Tasks[idx+1:]...)
	return Applied
}

func (v *View) setAssignee(taskID, userID uuid.UUID, assigned bool) Outcome {
	holder, idx := v.FindTask(taskID)
	if holder == nil {
		return NeedsRefetch
	}
	task := &holder.Tasks[idx]
	for i, id := range task.AssigneeIDs {
		if id == userID {
			if assigned {
				return Unchanged
			}
			task.AssigneeIDs = append(task.AssigneeIDs[:i:i], task.AssigneeIDs[i+1:]...)
			return Applied
		}
	}
	if !assigned {
		return Unchanged
	}
	task.AssigneeIDs = append(task.AssigneeIDs, userID)
	return Applied
}

func (v *View) upsertList(list dto.ListResponse) Outcome {
	if list.BoardID != v.Board.ID {
		return NeedsRefetch
	}
	if existing := v.List(list.ID); existing != nil {
		if existing.ListResponse == list {
			return Unchanged
		}
		existing.ListResponse = list
	} else {
		v.Lists = append(v.Lists, &ListView{ListResponse: list})
	}
	sort.SliceStable(v.Lists, func(i, j int) bool { return v.Lists[i].Position < v.Lists[j].Position })
	return Applied
}

func (v *View) removeList(listID uuid.UUID) Outcome {
	for i, l := range v.Lists {
		if l.ID == listID {
			v.Lists = append(v.Lists[:i:i], v.Lists[i+1:]...)
			return Applied
		}
	}
	return Unchanged
}

func (v *View) prependActivity(activity dto.ActivityResponse) Outcome {
	for _, a := range v.Activity {
		if a.ID == activity.ID {
			return Unchanged
		}
	}
	v.Activity = append([]dto.ActivityResponse{activity}, v.Activity...)
	if v.activityCap > 0 && len(v.Activity) > v.activityCap {
		v.Activity = v.Activity[:v.activityCap]
	}
	return Applied
}

func renumber(l *ListView) {
	for i := range l.Tasks {
		l.Tasks[i].Position = i + 1
	}
}

func insertTask(tasks []dto.TaskResponse, at int, task dto.TaskResponse) []dto.TaskResponse {
	out := make([]dto.TaskResponse, 0, len(tasks)+1)
	out = append(out, tasks[:at]...)
	out = append(out, task)
	return append(out, tasks[at:]...)
}

func decode(raw json.RawMessage, into interface{}) bool {
	return len(raw) > 0 && json.Unmarshal(raw, into) == nil
}
