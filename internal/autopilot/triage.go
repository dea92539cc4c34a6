package autopilot

// Bottleneck names the part of the floor holding sales back.
type Bottleneck string

const (
	BottleneckNone     Bottleneck = "none"      // Nothing obvious; grow prices
	BottleneckMenu     Bottleneck = "menu"      // No station unlocked yet
	BottleneckKitchen  Bottleneck = "kitchen"   // Orders wait on cooks or slots
	BottleneckWaiters  Bottleneck = "waiters"   // Orders or plates wait on waiters
	BottleneckCustomer Bottleneck = "customers" // Staff stand idle
)

// Health holds derived signals computed from a Snapshot.
type Health struct {
	Unlocked   int
	FreeSlots  int
	KitchenLag int // Back jobs beyond what idle cooks can start
	FrontLag   int // Take-order and delivery jobs beyond idle waiters
	Bottleneck Bottleneck
}

// Triage computes a Health from the snapshot's data.
func Triage(snap *Snapshot) *Health {
	h := &Health{}
	for _, st := range snap.Stations {
		if st.Unlocked {
			h.Unlocked++
			h.FreeSlots += st.Slots - st.Occupied
		}
	}

	q := snap.Queues
	h.KitchenLag = q.BackJobs - min(q.IdleBack, h.FreeSlots)
	h.FrontLag = q.TakeOrderJobs + q.DeliveryJobs - q.IdleFront

	switch {
	case h.Unlocked == 0:
		h.Bottleneck = BottleneckMenu
	case h.KitchenLag > 0 && h.KitchenLag >= h.FrontLag:
		h.Bottleneck = BottleneckKitchen
	case h.FrontLag > 0:
		h.Bottleneck = BottleneckWaiters
	case q.IdleBack > 0 && q.IdleFront > 0 && q.BackJobs == 0:
		h.Bottleneck = BottleneckCustomer
	default:
		h.Bottleneck = BottleneckNone
	}
	return h
}
