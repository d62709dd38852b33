package fretmidi

import "github.com/GeoffreyPlitt/debuggo"

var polyDebug = debuggo.Debug("fretmidi:poly")

// polyLink implements PolyGroupManager.link: finger becomes the new,
// unsuppressed leader (head) of its poly group's voice-stack; whatever
// finger was previously the leader is marked suppressed and kept linked
// behind it. Returns the previously-audible finger, or Nobody.
func (c *Context) polyLink(finger, group int) int {
	oldLeader := c.polyGroups[group].currentFingerInPolyGroup

	c.fingers[finger].prevInPolyGroup = Nobody
	c.fingers[finger].nextInPolyGroup = oldLeader
	c.fingers[finger].isSuppressed = false
	c.fingers[finger].polyGroup = group

	if oldLeader != Nobody {
		c.fingers[oldLeader].prevInPolyGroup = finger
		c.fingers[oldLeader].isSuppressed = true
	}

	c.polyGroups[group].currentFingerInPolyGroup = finger
	polyDebug("finger %d linked into poly group %d, suppressing %d", finger, group, oldLeader)
	return oldLeader
}

// polyUnlink implements PolyGroupManager.unlink: removes finger from its
// poly group's list. If finger was the leader, the next-most-recent member
// is promoted to leader and un-suppressed; it is returned (or Nobody if the
// group is now empty).
func (c *Context) polyUnlink(finger int) int {
	group := c.fingers[finger].polyGroup
	if group == Nobody {
		return Nobody
	}

	prev := c.fingers[finger].prevInPolyGroup // newer neighbor, toward the head
	next := c.fingers[finger].nextInPolyGroup // older neighbor, toward the tail

	promoted := Nobody
	if prev != Nobody {
		c.fingers[prev].nextInPolyGroup = next
	} else {
		// finger was the leader/head; promote next.
		c.polyGroups[group].currentFingerInPolyGroup = next
		if next != Nobody {
			promoted = next
		}
	}
	if next != Nobody {
		c.fingers[next].prevInPolyGroup = prev
		if promoted == next {
			c.fingers[next].prevInPolyGroup = Nobody
			c.fingers[next].isSuppressed = false
		}
	}

	c.fingers[finger].nextInPolyGroup = Nobody
	c.fingers[finger].prevInPolyGroup = Nobody
	c.fingers[finger].polyGroup = Nobody

	if promoted != Nobody {
		polyDebug("finger %d unlinked from poly group %d, promoting %d", finger, group, promoted)
	} else {
		polyDebug("finger %d unlinked from poly group %d, group now empty or unchanged leader", finger, group)
	}
	return promoted
}
