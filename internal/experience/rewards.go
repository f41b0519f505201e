package experience

// DiscountedRewards computes G_t = r_t + gamma*G_{t+1} over one episode.
func DiscountedRewards(rewards []float64, gamma float64) []float64 {
	returns := make([]float64, len(rewards))
	running := 0.0
	for i := len(rewards) - 1; i >= 0; i-- {
		running = rewards[i] + gamma*running
		returns[i] = running
	}
	return returns
}

// DiscountedReturns computes discounted returns for a sequence of
// transitions that may span several episodes. The running return restarts
// after a done or truncated transition and whenever the episode id changes.
func DiscountedReturns(transitions []*Transition, gamma float64) []float64 {
	returns := make([]float64, 0, len(transitions))
	start := 0
	for i, t := range transitions {
		last := i == len(transitions)-1
		if !last && !t.Ended() && transitions[i+1].EpisodeID == t.EpisodeID {
			continue
		}
		rewards := make([]float64, i+1-start)
		for j := range rewards {
			rewards[j] = transitions[start+j].Reward
		}
		returns = append(returns, DiscountedRewards(rewards, gamma)...)
		start = i + 1
	}
	return returns
}
