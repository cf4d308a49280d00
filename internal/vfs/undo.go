package vfs

import "go.uber.org/zap"

// UndoLastOperation reverses the newest log record.
//
// The inverse mutation is not itself logged, so repeated calls walk further
// back through history; there is no redo. The record is only removed when the
// inverse succeeds, leaving a failed undo retryable.
//
// Undoing a delete recreates the removed subtree with fresh ids: paths captured
// before the delete do not resolve afterwards.
func (s *Store) UndoLastOperation() Result {
	s.mu.Lock()
	rec, ok := s.log.last()
	if !ok {
		s.mu.Unlock()
		s.recorder.RecordUndo(false)
		return failure(ErrNothingToUndo)
	}

	res, where := s.invertLocked(rec)
	if res.Success {
		s.log.pop()
	}
	s.mu.Unlock()

	s.recorder.RecordUndo(res.Success)
	if !res.Success {
		s.logger.Debug("undo failed", zap.String("op", string(rec.Type)), zap.String("error", res.Message()))
		return res
	}

	s.logger.Debug("undo committed", zap.String("op", string(rec.Type)), zap.Stringer("path", where))
	s.notify(Event{Op: rec.Type, Path: where, Undo: true, Timestamp: s.now()})
	return res
}

// invertLocked applies the inverse of rec without touching the log. It returns
// the result of the inverse mutation and the path it affected.
func (s *Store) invertLocked(rec Record) (Result, Path) {
	switch rec.Type {
	case OpCreate, OpCopy:
		if rec.NewPath == nil {
			return failure(ErrUndoUnsupported), nil
		}
		res, _ := s.deleteLocked(rec.NewPath)
		return res, rec.NewPath.Clone()

	case OpDelete:
		if rec.OldPath == nil || rec.Item == nil {
			return failure(ErrUndoUnsupported), nil
		}
		parentPath := rec.OldPath.Parent()
		res, restored := s.restoreLocked(parentPath, rec.Item)
		if !res.Success {
			return res, nil
		}
		return res, parentPath.Append(restored.ID)

	case OpRename:
		if rec.OldPath == nil || rec.Item == nil {
			return failure(ErrUndoUnsupported), nil
		}
		res, _ := s.renameLocked(rec.OldPath, rec.Item.Name)
		return res, rec.OldPath.Clone()

	case OpMove:
		if rec.OldPath == nil || rec.NewPath == nil {
			return failure(ErrUndoUnsupported), nil
		}
		res, _ := s.moveLocked(rec.NewPath, rec.OldPath.Parent())
		return res, rec.OldPath.Clone()

	case OpUpdate:
		if rec.NewPath == nil || rec.Item == nil {
			return failure(ErrUndoUnsupported), nil
		}
		res, _ := s.updateLocked(rec.NewPath, rec.Item.Content)
		return res, rec.NewPath.Clone()

	default:
		return failure(ErrUndoUnsupported), nil
	}
}

// restoreLocked re-inserts a deleted snapshot under parentPath with new ids
func (s *Store) restoreLocked(parentPath Path, snapshot *Item) (Result, *Item) {
	parent := s.resolve(parentPath)
	if parent == nil || !parent.IsFolder() {
		return failure(ErrParentNotFound), nil
	}
	if !nameAvailable(parent, snapshot.Name) {
		return failure(ErrNameInvalid), nil
	}

	now := s.now()
	restored := s.cloneFresh(snapshot, now)
	parent.Children = append(parent.Children, restored)
	parent.Modified = now
	return success(restored.Clone()), restored
}
