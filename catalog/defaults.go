package catalog

import "moodbot/domain"

var defaultProfessions = [][]string{
	{"Заместитель директора", "Начальник отдела"},
	{"Врач", "Медсестра"},
	{"Работник кухни", "Работник АХО"},
	{"Специалист по соц. работе"},
	{"Педагог (психолог)", "Педагог (логопед)"},
	{"Педагог (дефектолог)", "Педагог (ПДО)"},
	{"Педагог (организатор)", "Педагог (АФК)"},
	{"Педагог (муз. рук.)", "Воспитатель"},
	{"Помощник воспитателя", "Младший воспитатель"},
	{"Кадровый работник", "Бухгалтер/Экономист"},
	{"Специалист АУП", "Водитель"},
}

var defaultAnswers = []Answer{
	{Label: "Плохо/Нет", Score: 1},
	{Label: "Нормально/Частично", Score: 2},
	{Label: "Отлично/Да", Score: 3},
}

var defaultQuizzes = map[domain.QuizType]Quiz{
	domain.QuizMorning: {
		Key:   domain.QuizMorning,
		Intro: "Доброе утро! ✨ Мне очень важно знать, как ты себя чувствуешь. Давай пройдем быстрый опрос, чтобы настроиться на продуктивный день.",
		Questions: []string{
			"Как ты оцениваешь качество своего сна?",
			"С каким настроением ты начинаешь рабочий день?",
			"Насколько ясны твои задачи на сегодня?",
			"Чувствуешь ли ты в себе энергию для выполнения задач?",
			"Насколько ты оптимистично смотришь на сегодняшний день?",
		},
	},
	domain.QuizDay: {
		Key:   domain.QuizDay,
		Intro: "Привет! Как проходит твой день? ☕️ Давай сделаем короткую паузу и проверим твой настрой. Это займет всего минуту.",
		Questions: []string{
			"Насколько ты сейчас загружен работой?",
			"Чувствуешь ли ты поддержку со стороны коллег?",
			"Насколько успешно получается справляться с задачами?",
			"Как ты оцениваешь свой текущий уровень стресса?",
			"Хватает ли тебе времени на короткие перерывы?",
		},
	},
	domain.QuizEvening: {
		Key:   domain.QuizEvening,
		Intro: "Добрый вечер! Рабочий день подходит к концу. 🌅 Поделись, пожалуйста, своими впечатлениями. Твои ответы помогут нам стать лучше.",
		Questions: []string{
			"Насколько продуктивным был твой сегодняшний день?",
			"Доволен ли ты результатами своей работы сегодня?",
			"Остались ли у тебя силы на вечерние дела и хобби?",
			"Были ли сегодня моменты, которые тебя расстроили или вызвали негатив?",
			"Что ты чувствуешь по поводу завтрашнего рабочего дня?",
		},
	},
}

// Default возвращает встроенный каталог. Каждый вызов отдает независимую копию
func Default() *Catalog {
	professions := make([][]string, 0, len(defaultProfessions))
	for _, row := range defaultProfessions {
		professions = append(professions, append([]string(nil), row...))
	}
	quizzes := make(map[domain.QuizType]Quiz, len(defaultQuizzes))
	for t, q := range defaultQuizzes {
		q.Questions = append([]string(nil), q.Questions...)
		quizzes[t] = q
	}
	return &Catalog{
		Professions: professions,
		Quizzes:     quizzes,
		Answers:     append([]Answer(nil), defaultAnswers...),
	}
}
