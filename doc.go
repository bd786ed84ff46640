/*
Package stepwise is a configuration-driven workflow engine for business objects.

A machine owns no state of its own: the current state lives in one attribute of the
object it drives (by default "state"). Transitions are named edges between declared
steps, each with an optional validator set and pre/post callbacks.

# Pipeline

Apply runs, in order, and stops at the first fatal failure:

  - Guard: the transition must exist and leave the current state.
  - The pre-transition signal.
  - Validation: every rule entry runs and failures accumulate. A transition that
    declares no validators is rejected unless WithUnvalidatedTransitions is used.
  - Pre callbacks.
  - Mutation: the target step must be declared; the state attribute is written and persisted.
  - The post-transition signal (the history recorder listens here by default).
  - Post callbacks.

Missing callbacks never fail a transition; they are reported to the warning hook.

# Concurrency

A machine assumes at most one Apply in flight per object. Serializing concurrent
requests is the caller's responsibility; pkg/session provides a lock-based manager.

# Usage

	post := entity.New(domain.NewRecord("post-1", map[string]any{
		"state": "draft",
		"title": "Hello",
	}), store)

	m, err := stepwise.New(post, domain.Config{
		Steps: domain.NewSteps("draft", "published"),
		Transitions: map[string]domain.TransitionSpec{
			"publish": {
				From: "draft",
				To:   "published",
				Text: "Publish",
				Validators: domain.ValidatorSet{
					domain.DefaultRules(map[string]string{"title": "required|max:255"}),
				},
			},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := m.Apply(ctx, "publish"); err != nil {
		for _, fe := range domain.ValidationErrors(err) {
			log.Println(fe.Message)
		}
	}
*/
package stepwise
