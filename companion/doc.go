// Package companion is the top-level orchestrator: one call per user
// message drives both the relationship state machine and the memory
// consolidation pipeline, and a second call renders the combined state
// as prompt-ready context.
//
// Basic usage:
//
//	engine, err := companion.New(relStore, consolidator, memStore)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer engine.Close()
//
//	result, err := engine.ProcessInteraction(ctx, "user-1", "char-1", "我爱你")
//	if result.LevelUp != nil {
//		fmt.Println(result.LevelUp.Celebration)
//	}
//
//	prompt, err := engine.Context(ctx, "user-1", "char-1")
//
// The two halves of ProcessInteraction degrade independently: if the
// embedding provider is down, the relationship still progresses and the
// memory failure is reported in Result.MemoryErr, and vice versa.
package companion
