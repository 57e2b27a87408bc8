// Command sfgdemo builds a small task stream by hand, runs it through
// insert_tasks and every optimization pass, extracts the resulting launch
// order, and prints the final DOT graph — exercising every
// [MODULE] end to end.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dshills/sfg"
	"github.com/dshills/sfg/emit"
)

func main() {
	var (
		dotOut   = flag.String("dot", "", "write the final DOT graph to this path instead of stdout")
		verbose  = flag.Bool("v", false, "log every graph event to stderr")
		rankDir  = flag.String("rankdir", "LR", "GraphViz rankdir for the emitted DOT graph")
	)
	flag.Parse()

	if err := run(*dotOut, *rankDir, *verbose); err != nil {
		log.Fatalf("sfgdemo: %v", err)
	}
}

func run(dotOut, rankDir string, verbose bool) error {
	ctx := context.Background()
	bank := sfg.NewMemoryBank()

	emitter := emit.Emitter(emit.NewNullEmitter())
	if verbose {
		emitter = emit.NewLogEmitter(os.Stderr, false)
	}

	// Disable insert-time listgen filtering so the demo stream's redundant
	// regeneration task survives to become a pending node, letting
	// optimize_listgen (rather than insert_tasks) demonstrate the dedup.
	g, err := sfg.New(bank, sfg.WithEmitter(emitter), sfg.WithListgenFilter(false))
	if err != nil {
		return fmt.Errorf("construct graph: %w", err)
	}

	records := buildDemoTaskStream(bank)
	if err := g.InsertTasks(ctx, records); err != nil {
		return fmt.Errorf("insert_tasks: %w", err)
	}
	fmt.Printf("inserted %d tasks\n", g.NumPendingTasks())

	fused, err := g.Fuse(ctx)
	if err != nil {
		return fmt.Errorf("fuse: %w", err)
	}
	fmt.Printf("fuse: changed=%v, %d pending remain\n", fused, g.NumPendingTasks())

	dedup, err := g.OptimizeListgen(ctx)
	if err != nil {
		return fmt.Errorf("optimize_listgen: %w", err)
	}
	fmt.Printf("optimize_listgen: changed=%v, %d pending remain\n", dedup, g.NumPendingTasks())

	demoted, err := g.DemoteActivation(ctx)
	if err != nil {
		return fmt.Errorf("demote_activation: %w", err)
	}
	fmt.Printf("demote_activation: changed=%v, %d pending remain\n", demoted, g.NumPendingTasks())

	deadStore, err := g.OptimizeDeadStore(ctx)
	if err != nil {
		return fmt.Errorf("optimize_dead_store: %w", err)
	}
	fmt.Printf("optimize_dead_store: changed=%v, %d pending remain\n", deadStore, g.NumPendingTasks())

	if err := g.Verify(); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	fmt.Println("verify: all invariants hold")

	out, err := g.ExtractToExecute(ctx)
	if err != nil {
		return fmt.Errorf("extract_to_execute: %w", err)
	}
	fmt.Printf("extract_to_execute: %d launch records\n", len(out))
	for i, rec := range out {
		fmt.Printf("  %d. %s\n", i+1, rec.Fingerprint)
	}

	dot := g.DumpDot(sfg.DotOptions{RankDir: rankDir, EmbedStatesThreshold: 3})
	if dotOut == "" {
		fmt.Println()
		fmt.Println(dot)
		return nil
	}
	return os.WriteFile(dotOut, []byte(dot), 0o644)
}

// buildDemoTaskStream interns metadata for a handful of tasks over a small
// shared-state namespace and returns their launch records in submission
// order: two element-wise writers of the same array (fusible), a reader
// that depends on them, a listgen task, a redundant listgen re-run of the
// same sparse node (collapsed by optimize_listgen), and a dead write that
// optimize_dead_store removes outright.
func buildDemoTaskStream(bank *sfg.MemoryBank) []sfg.LaunchRecord {
	bank.SetMergeBodies(func(a, b any) (any, bool) {
		return fmt.Sprintf("merge(%v, %v)", a, b), true
	})
	// Listgen tasks are never reported fusible, so the redundant
	// regeneration pair reaches optimize_listgen instead of being merged
	// by fuse.
	bank.SetFusibilityCheck(func(a, b *sfg.TaskMeta) bool { return a.ListWrites == nil && b.ListWrites == nil })

	field := sfg.NewResource("field")
	sigma := sfg.NewState(field, sfg.StateValue)

	sparse := sfg.NewResource("activeCells")
	list := sfg.NewState(sparse, sfg.StateList)

	scratch := sfg.NewResource("scratch")
	scratchState := sfg.NewState(scratch, sfg.StateValue)

	intern := func(name string, meta *sfg.TaskMeta) sfg.LaunchRecord {
		meta.Name = name
		meta.Fingerprint = name
		bank.Intern(meta)
		return sfg.LaunchRecord{Fingerprint: name, Payload: name}
	}

	return []sfg.LaunchRecord{
		intern("init_field_a", &sfg.TaskMeta{
			OutputStates: sfg.NewStateSet(sigma),
			Shape:        sfg.ShapeElementWise, Begin: 0, End: 1024,
		}),
		intern("init_field_b", &sfg.TaskMeta{
			OutputStates: sfg.NewStateSet(sigma),
			Shape:        sfg.ShapeElementWise, Begin: 0, End: 1024,
		}),
		intern("reduce_field", &sfg.TaskMeta{
			InputStates:    sfg.NewStateSet(sigma),
			Shape:          sfg.ShapeElementWise, Begin: 0, End: 1024,
			HasSideEffects: true,
		}),
		intern("regen_active_cells_1", &sfg.TaskMeta{
			OutputStates: sfg.NewStateSet(list),
			ListWrites:   sparse,
		}),
		intern("regen_active_cells_2", &sfg.TaskMeta{
			OutputStates: sfg.NewStateSet(list),
			ListWrites:   sparse,
		}),
		intern("dead_scratch_write", &sfg.TaskMeta{
			OutputStates: sfg.NewStateSet(scratchState),
		}),
	}
}
