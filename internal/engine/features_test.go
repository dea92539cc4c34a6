package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/talgya/mini-kitchen/internal/agents"
	"github.com/talgya/mini-kitchen/internal/economy"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeKitchenScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

// kitchenContext holds one scenario's simulation and the actors it follows.
type kitchenContext struct {
	sim      *Simulation
	job      *Job
	customer *agents.Customer
}

func (k *kitchenContext) reset() {
	k.sim = nil
	k.job = nil
	k.customer = nil
}

// Given steps

func (k *kitchenContext) aKitchenWith(back, front int) error {
	opts := testOptions()
	opts.BackWorkers = back
	opts.FrontWorkers = front
	s, err := NewSimulation(opts)
	if err != nil {
		return err
	}
	k.sim = s
	return nil
}

func (k *kitchenContext) stationIsOpen(category, slots, workMs, price int) error {
	if category >= len(k.sim.Stations) {
		return fmt.Errorf("no station %d", category)
	}
	openStation(k.sim, category, slots, time.Duration(workMs)*time.Millisecond, float64(price))
	return nil
}

func (k *kitchenContext) theLedgerHolds(coins int) error {
	k.sim.Ledger.Set(economy.FromFloat(float64(coins)))
	return nil
}

func (k *kitchenContext) customersArrive(n int) error {
	k.sim.addCustomers(n)
	c, err := k.sim.idleCustomers.Peek()
	if err != nil {
		return err
	}
	k.customer = c
	return nil
}

func (k *kitchenContext) aCustomerWhoOrdered(quantity, category int) error {
	if err := k.customersArrive(1); err != nil {
		return err
	}
	err := runUntil(k.sim, 2000, func() bool {
		j := k.customerJob()
		return j != nil && j.State == StateWait
	})
	if err != nil {
		return err
	}
	k.customer.ChooseProduct(category)
	_, err = k.customer.PlaceOrder(quantity, newProduct(category))
	return err
}

// When steps

func (k *kitchenContext) backJobsQueued(n, category int) error {
	for range n {
		k.sim.backJobs.Push(BackJob{Category: category})
	}
	return nil
}

func (k *kitchenContext) runsForMs(ms int) error {
	runFor(k.sim, time.Duration(ms)*time.Millisecond)
	return nil
}

func (k *kitchenContext) runsForTicks(n int) error {
	runTicks(k.sim, n)
	return nil
}

func (k *kitchenContext) runsUntilBackJobIn(state string) error {
	return runUntil(k.sim, 2000, func() bool {
		if k.job == nil {
			k.job = firstJob(k.sim, KindBack)
		}
		return k.job != nil && k.job.State.String() == state
	})
}

func (k *kitchenContext) runsUntilBackWorkersIdle(n int) error {
	return runUntil(k.sim, 2000, func() bool { return k.sim.idleBack.Len() == n })
}

func (k *kitchenContext) productLandsOnCustomersArea(category int) error {
	j := k.customerJob()
	if j == nil {
		return fmt.Errorf("customer %d has no visit", k.customer.ID)
	}
	j.Task.(CustomerVisit).Area.PutProduct(newProduct(category))
	return nil
}

// Then steps

func (k *kitchenContext) backJobShouldBeIn(state string) error {
	if k.job == nil {
		return fmt.Errorf("no back job tracked")
	}
	if got := k.job.State.String(); got != state {
		return fmt.Errorf("expected back job in state %q, got %q", state, got)
	}
	return nil
}

func (k *kitchenContext) backWorkerHoldsNothing() error {
	if k.job.Worker.Holding() {
		return fmt.Errorf("back worker holds a product of category %d", k.job.Worker.Hold.Category)
	}
	return nil
}

func (k *kitchenContext) backWorkerHolds(category, price int) error {
	p := k.job.Worker.Hold
	if p == nil {
		return fmt.Errorf("back worker holds nothing")
	}
	if p.Category != category || p.Price != float64(price) {
		return fmt.Errorf("expected product %d at %d, got %d at %g", category, price, p.Category, p.Price)
	}
	return nil
}

func (k *kitchenContext) productsOnDeliveryTables(n int) error {
	if got := productsOn(k.sim.DeliveryTables); got != n {
		return fmt.Errorf("expected %d products on delivery tables, got %d", n, got)
	}
	return nil
}

func (k *kitchenContext) deliveryJobsQueued(n int) error {
	if got := k.sim.deliveryJobs.Len(); got != n {
		return fmt.Errorf("expected %d delivery jobs, got %d", n, got)
	}
	return nil
}

func (k *kitchenContext) ledgerShouldHold(coins int) error {
	if got := k.sim.Ledger.Balance().Float64(); got != float64(coins) {
		return fmt.Errorf("expected %d coins, got %g", coins, got)
	}
	return nil
}

func (k *kitchenContext) backJobsInFlight(n int) error {
	if got := len(jobsOfKind(k.sim, KindBack)); got != n {
		return fmt.Errorf("expected %d back jobs in flight, got %d", n, got)
	}
	return nil
}

func (k *kitchenContext) backJobsShouldBeQueued(n int) error {
	if got := k.sim.backJobs.Len(); got != n {
		return fmt.Errorf("expected %d queued back jobs, got %d", n, got)
	}
	return nil
}

func (k *kitchenContext) backWorkersIdle(n int) error {
	if got := k.sim.idleBack.Len(); got != n {
		return fmt.Errorf("expected %d idle back workers, got %d", n, got)
	}
	return nil
}

func (k *kitchenContext) dispatcherDeferred(n int) error {
	if got := k.sim.Stats.Deferred; got != n {
		return fmt.Errorf("expected %d deferred dispatches, got %d", n, got)
	}
	return nil
}

func (k *kitchenContext) customerStillNeeds(n int) error {
	if got := k.customer.Remaining; got != n {
		return fmt.Errorf("expected customer to need %d, got %d", n, got)
	}
	return nil
}

func (k *kitchenContext) customerShouldBeIn(state string) error {
	j := k.customerJob()
	if j == nil {
		return fmt.Errorf("customer %d has no visit", k.customer.ID)
	}
	if got := j.State.String(); got != state {
		return fmt.Errorf("expected customer in state %q, got %q", state, got)
	}
	return nil
}

func (k *kitchenContext) completionNotReportedAgain() error {
	if k.customer.IsOrderCompleted() {
		return fmt.Errorf("order completion reported twice")
	}
	return nil
}

func (k *kitchenContext) takeOrderJobsQueued(n int) error {
	if got := k.sim.takeOrderJobs.Len(); got != n {
		return fmt.Errorf("expected %d take-order jobs, got %d", n, got)
	}
	return nil
}

func (k *kitchenContext) customerJob() *Job {
	for _, j := range jobsOfKind(k.sim, KindCustomer) {
		if j.Customer == k.customer {
			return j
		}
	}
	return nil
}

// InitializeKitchenScenario registers the kitchen steps.
func InitializeKitchenScenario(sc *godog.ScenarioContext) {
	k := &kitchenContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		k.reset()
		return ctx, nil
	})

	sc.Step(`^a kitchen with (\d+) back workers? and (\d+) front workers?$`, k.aKitchenWith)
	sc.Step(`^station (\d+) is open with (\d+) slots?, a work duration of (\d+) ms and a price of (\d+)$`, k.stationIsOpen)
	sc.Step(`^the ledger holds (\d+) coins$`, k.theLedgerHolds)
	sc.Step(`^(\d+) customers? arrives?$`, k.customersArrive)
	sc.Step(`^a customer waiting at a waiting area who ordered (\d+) of category (\d+)$`, k.aCustomerWhoOrdered)

	sc.Step(`^(\d+) back jobs? for category (\d+) (?:is|are) queued$`, k.backJobsQueued)
	sc.Step(`^the simulation runs for (\d+) ms$`, k.runsForMs)
	sc.Step(`^the simulation runs for (\d+) ticks?$`, k.runsForTicks)
	sc.Step(`^the simulation runs until the back job is in state "([^"]*)"$`, k.runsUntilBackJobIn)
	sc.Step(`^the simulation runs until (\d+) back workers? (?:is|are) idle$`, k.runsUntilBackWorkersIdle)
	sc.Step(`^a product of category (\d+) lands on the customer's waiting area$`, k.productLandsOnCustomersArea)

	sc.Step(`^the back job should be in state "([^"]*)"$`, k.backJobShouldBeIn)
	sc.Step(`^the back worker should hold nothing$`, k.backWorkerHoldsNothing)
	sc.Step(`^the back worker should hold a product of category (\d+) priced (\d+)$`, k.backWorkerHolds)
	sc.Step(`^(\d+) products? should be waiting on the delivery tables$`, k.productsOnDeliveryTables)
	sc.Step(`^(\d+) delivery jobs? should be queued$`, k.deliveryJobsQueued)
	sc.Step(`^the ledger should hold (\d+) coins$`, k.ledgerShouldHold)
	sc.Step(`^(\d+) back jobs? should be in flight$`, k.backJobsInFlight)
	sc.Step(`^(\d+) back jobs? should be queued$`, k.backJobsShouldBeQueued)
	sc.Step(`^(\d+) back workers? should be idle$`, k.backWorkersIdle)
	sc.Step(`^the dispatcher should have deferred (\d+) jobs?$`, k.dispatcherDeferred)
	sc.Step(`^the customer should still need (\d+) products?$`, k.customerStillNeeds)
	sc.Step(`^the customer should be in state "([^"]*)"$`, k.customerShouldBeIn)
	sc.Step(`^the order completion should not be reported again$`, k.completionNotReportedAgain)
	sc.Step(`^(\d+) take-order jobs? should be queued$`, k.takeOrderJobsQueued)
}
