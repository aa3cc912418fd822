package habits

import (
	"fmt"

	"github.com/alexanderramin/slotwise/internal/domain"
)

type citation struct {
	Title string
	HTML  string
}

var (
	atomicHabits = citation{
		Title: "Atomic Habits",
		HTML: "<p>Clear, James. <em>Atomic Habits: An Easy & Proven Way to Build " +
			"Good Habits & Break Bad Ones</em>. Avery, 2018.</p>",
	}
	powerOfHabit = citation{
		Title: "The Power of Habit",
		HTML: "<p>Duhigg, Charles. <em>The Power of Habit: Why We Do What We Do " +
			"in Life and Business</em>. Random House, 2012.</p>",
	}
	sevenHabits = citation{
		Title: "The 7 Habits of Highly Effective People",
		HTML: "<p>Covey, Stephen R. <em>The 7 Habits of Highly Effective People: " +
			"Powerful Lessons in Personal Change</em>. Free Press, 1989.</p>",
	}
)

// Motivate builds the encouragement message and its MLA citation.
func Motivate(h domain.Habit, sent domain.Sentiment, importance int) domain.Motivation {
	name := domain.Coalesce(h.Name, "this habit")
	goal := domain.Coalesce(h.EndGoal, "your goals")

	cite := sevenHabits
	switch {
	case importance >= 80:
		cite = atomicHabits
	case sent == domain.SentimentPositive:
		cite = powerOfHabit
	}

	var msg string
	switch {
	case sent == domain.SentimentPositive && importance >= 70:
		msg = fmt.Sprintf("You're building something meaningful with %s! "+
			"Every small step brings you closer to %s. "+
			"Remember: \"Small changes can make a remarkable difference\" (Clear 23). Keep going!", name, goal)
	case sent == domain.SentimentPositive:
		msg = fmt.Sprintf("%s is a positive step toward %s. "+
			"Consistency is key - \"You do not rise to the level of your goals. "+
			"You fall to the level of your systems\" (Clear 27).", name, goal)
	case importance >= 70:
		msg = fmt.Sprintf("%s matters for achieving %s. "+
			"Even when it's challenging, remember: \"The secret of getting ahead "+
			"is getting started\" (Covey 45). You've got this!", name, goal)
	default:
		msg = fmt.Sprintf("Building %s will help you reach %s. "+
			"Start small and stay consistent. Every habit starts with a single step.", name, goal)
	}

	return domain.Motivation{Message: msg, Citations: []string{cite.HTML}}
}

// SampleCitation is the citation attached to placeholder habit output.
func SampleCitation() string {
	return atomicHabits.HTML
}
