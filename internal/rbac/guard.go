package rbac

// Guard enforces the hierarchy rules that govern who may change whose role
// or permissions. All comparisons are strict: equal-or-above is forbidden,
// which blocks lateral and upward privilege escalation.
type Guard struct {
	// DeletionFloor is the minimum absolute hierarchy level an actor must
	// hold to delete accounts, independent of the relative comparison.
	DeletionFloor int
}

// NewGuard builds a Guard with the given deletion floor.
func NewGuard(deletionFloor int) Guard {
	return Guard{DeletionFloor: deletionFloor}
}

// CanAssign reports whether an actor at actorLevel may hand out a role at
// targetRoleLevel. The target role must sit strictly below the actor.
func (g Guard) CanAssign(actorLevel, targetRoleLevel int) bool {
	return targetRoleLevel < actorLevel
}

// CanActOn reports whether an actor may act destructively on a target user
// whose current role sits at targetUserLevel.
func (g Guard) CanActOn(actorLevel, targetUserLevel int) bool {
	return targetUserLevel < actorLevel
}

// CheckAssignRole validates a role change of targetUser by actor.
// The self check runs first: it holds even when the level comparison
// would otherwise permit the assignment.
func (g Guard) CheckAssignRole(actorID, targetUserID string, actorLevel, targetRoleLevel int) error {
	if actorID == targetUserID {
		return ErrSelfRoleChange
	}
	if !g.CanAssign(actorLevel, targetRoleLevel) {
		return ErrLevelNotBelow
	}
	return nil
}

// CheckModifyOverrides validates an override replacement for targetUser.
// Overrides may only be edited for users strictly below the actor.
func (g Guard) CheckModifyOverrides(actorID, targetUserID string, actorLevel, targetUserLevel int) error {
	if actorID == targetUserID {
		return ErrSelfAction
	}
	if !g.CanActOn(actorLevel, targetUserLevel) {
		return ErrLevelNotBelow
	}
	return nil
}

// CheckDelete validates account deletion. Deletion is irreversible, so the
// actor must both dominate the target and meet the absolute floor.
func (g Guard) CheckDelete(actorID, targetUserID string, actorLevel, targetUserLevel int) error {
	if actorID == targetUserID {
		return ErrSelfDelete
	}
	if actorLevel < g.DeletionFloor {
		return ErrBelowDeletionFloor
	}
	if !g.CanActOn(actorLevel, targetUserLevel) {
		return ErrLevelNotBelow
	}
	return nil
}
