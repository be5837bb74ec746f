package routes_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func createPublishedQuiz(t *testing.T, token string) uint {
	t.Helper()
	resp := request(t, "POST", "/api/quizzes", token, map[string]string{
		"title": "Periodic table basics",
		"topic": "Elements",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create quiz: status %d", resp.StatusCode)
	}
	quizID := uint(dataOf(t, resp)["id"].(float64))

	questions := []map[string]interface{}{
		{"prompt": "Symbol for sodium?", "options": []string{"Na", "So", "Sd"}, "correct_index": 0, "sequence_order": 1},
		{"prompt": "Atomic number of helium?", "options": []string{"1", "2", "3"}, "correct_index": 1, "sequence_order": 2},
	}
	for _, q := range questions {
		resp = request(t, "POST", urlf("/api/quizzes/%d/questions", quizID), token, q)
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("add question: status %d", resp.StatusCode)
		}
	}

	resp = request(t, "PUT", urlf("/api/quizzes/%d/publish", quizID), token, map[string]bool{"published": true})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("publish quiz: status %d", resp.StatusCode)
	}
	return quizID
}

func TestStudentCannotAuthorQuiz(t *testing.T) {
	student := seedUser(t, uniqueName("student"), "student")

	resp := request(t, "POST", "/api/quizzes", login(t, student.Username), map[string]string{
		"title": "Fake quiz",
	})

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestQuizTakingAndScoring(t *testing.T) {
	teacher := seedUser(t, uniqueName("teacher"), "teacher")
	student := seedUser(t, uniqueName("student"), "student")
	teacherToken := login(t, teacher.Username)
	studentToken := login(t, student.Username)

	quizID := createPublishedQuiz(t, teacherToken)

	// Student sees questions without answers.
	resp := request(t, "GET", urlf("/api/quizzes/%d", quizID), studentToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	questions := dataOf(t, resp)["questions"].([]interface{})
	assert.Len(t, questions, 2)
	_, leaked := questions[0].(map[string]interface{})["correct_index"]
	assert.False(t, leaked)

	// Author sees the answer key.
	resp = request(t, "GET", urlf("/api/quizzes/%d", quizID), teacherToken, nil)
	questions = dataOf(t, resp)["questions"].([]interface{})
	_, present := questions[0].(map[string]interface{})["correct_index"]
	assert.True(t, present)

	// One right, one wrong: 50%.
	resp = request(t, "POST", urlf("/api/quizzes/%d/attempts", quizID), studentToken, map[string]interface{}{
		"answers": []int{0, 0},
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	data := dataOf(t, resp)
	assert.Equal(t, float64(1), data["correct"])
	assert.Equal(t, float64(50), data["score"])
}

func TestTeacherCannotTakeQuiz(t *testing.T) {
	author := seedUser(t, uniqueName("author"), "teacher")
	other := seedUser(t, uniqueName("taker"), "teacher")

	quizID := createPublishedQuiz(t, login(t, author.Username))

	resp := request(t, "POST", urlf("/api/quizzes/%d/attempts", quizID), login(t, other.Username), map[string]interface{}{
		"answers": []int{0, 1},
	})

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestUnpublishedQuizHiddenFromStudents(t *testing.T) {
	teacher := seedUser(t, uniqueName("teacher"), "teacher")
	student := seedUser(t, uniqueName("student"), "student")
	teacherToken := login(t, teacher.Username)

	resp := request(t, "POST", "/api/quizzes", teacherToken, map[string]string{
		"title": "Draft quiz",
	})
	quizID := uint(dataOf(t, resp)["id"].(float64))

	resp = request(t, "GET", urlf("/api/quizzes/%d", quizID), login(t, student.Username), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestResultsAreScopedToOwner(t *testing.T) {
	teacher := seedUser(t, uniqueName("teacher"), "teacher")
	alice := seedUser(t, uniqueName("alice"), "student")
	bob := seedUser(t, uniqueName("bob"), "student")
	admin := seedUser(t, uniqueName("admin"), "admin")
	aliceToken := login(t, alice.Username)
	bobToken := login(t, bob.Username)

	quizID := createPublishedQuiz(t, login(t, teacher.Username))

	request(t, "POST", urlf("/api/quizzes/%d/attempts", quizID), aliceToken, map[string]interface{}{"answers": []int{0, 1}})
	request(t, "POST", urlf("/api/quizzes/%d/attempts", quizID), bobToken, map[string]interface{}{"answers": []int{1, 0}})

	// Each student sees only their own attempts.
	resp := request(t, "GET", urlf("/api/quizzes/%d/results", quizID), aliceToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	attempts := dataOf(t, resp)["attempts"].([]interface{})
	assert.Len(t, attempts, 1)

	// An admin sees everyone's.
	resp = request(t, "GET", urlf("/api/quizzes/%d/results", quizID), login(t, admin.Username), nil)
	attempts = dataOf(t, resp)["attempts"].([]interface{})
	assert.Len(t, attempts, 2)
}

func TestQuizAnalytics(t *testing.T) {
	teacher := seedUser(t, uniqueName("teacher"), "teacher")
	rival := seedUser(t, uniqueName("rival"), "teacher")
	student := seedUser(t, uniqueName("student"), "student")
	teacherToken := login(t, teacher.Username)

	quizID := createPublishedQuiz(t, teacherToken)
	request(t, "POST", urlf("/api/quizzes/%d/attempts", quizID), login(t, student.Username), map[string]interface{}{
		"answers": []int{0, 1},
	})

	resp := request(t, "GET", urlf("/api/quizzes/%d/analytics", quizID), teacherToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := dataOf(t, resp)
	assert.Equal(t, float64(1), data["attempts"])
	assert.Equal(t, float64(100), data["avg_score"])

	// Another teacher has no access to someone else's analytics.
	resp = request(t, "GET", urlf("/api/quizzes/%d/analytics", quizID), login(t, rival.Username), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
