package database

import "moodbot/domain"

func userFromPostgresToDomain(up *UserPostgres) domain.User {
	return domain.User{
		UserID:     up.UserID,
		Profession: up.Profession,
	}
}

func responseFromPostgresToDomain(rp *ResponsePostgres) domain.ResponseRecord {
	return domain.ResponseRecord{
		Timestamp:  rp.Timestamp,
		UserID:     rp.UserID,
		Profession: rp.Profession,
		QuizType:   domain.QuizType(rp.QuizType),
		Question:   rp.Question,
		Answer:     rp.Answer,
		Score:      rp.Score,
	}
}

func responseFromDomainToPostgres(r *domain.ResponseRecord) ResponsePostgres {
	return ResponsePostgres{
		Timestamp:  r.Timestamp,
		UserID:     r.UserID,
		Profession: r.Profession,
		QuizType:   string(r.QuizType),
		Question:   r.Question,
		Answer:     r.Answer,
		Score:      r.Score,
	}
}
