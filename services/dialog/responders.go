package dialog

import (
	"fmt"
	"strings"

	"voyago/models"
)

// Fixed reply texts. The agency speaks first-person singular, polite "вы".
const (
	greetingText = "Здравствуйте! Я консультант турагентства МГП. " +
		"Помогу подобрать тур. В какую страну планируете поездку?"

	emptyMessageText   = "Пожалуйста, напишите сообщение."
	messageTooLongText = "Сообщение получилось слишком длинным. Опишите, пожалуйста, короче: " +
		"страна, город вылета, даты и количество туристов."
	unsafeInputText = "Давайте вернёмся к подбору тура. В какую страну планируете поездку?"

	genericRecoveryText = "Произошла ошибка. Давайте начнём сначала. В какую страну планируете?"

	searchErrorText = "К сожалению, произошла ошибка при поиске туров. " +
		"Попробуйте изменить параметры или обратитесь к менеджеру."

	presentErrorText = "Произошла ошибка при показе результатов. " +
		"Я уточняю данные у системы, попробуйте ещё раз через минуту."

	noOffersText = "К сожалению, подходящих туров не найдено."

	noMoreOffersText = "Больше вариантов по этим параметрам не нашлось. " +
		"Могу изменить даты или убрать фильтры — напишите, что поменять."

	presentingFollowupText = "Могу показать ещё варианты или изменить параметры поиска. Что хотите?"

	smallTalkIdleText = "Чем ещё могу помочь? Могу подобрать тур по новым параметрам."

	fallbackRepeatText = "Выберите, пожалуйста, один из вариантов выше: 1, 2 или 3."

	askPhoneAgainText = "Пожалуйста, напишите номер телефона (начиная с +7 или 8), " +
		"и менеджер свяжется с Вами."

	bookingAskPhoneWithOffers = "Отлично! Для оформления заявки напишите Ваш номер телефона."
	bookingAskPhoneNoOffers   = "Хорошо. Напишите Ваш номер телефона, и менеджер свяжется с Вами."

	tourGoneText = "К сожалению, этот тур уже разобрали. Могу предложить другие варианты из списка."
)

// slotQuestions maps each required slot to its question.
var slotQuestions = map[models.Slot]string{
	models.SlotDestination: "В какую страну планируете поездку?",
	models.SlotDeparture:   "Из какого города планируете вылет?",
	models.SlotDateStart:   "Когда планируете отпуск? (укажите дату или месяц)",
	models.SlotNights:      "На сколько ночей планируете поездку?",
	models.SlotAdults:      "Сколько взрослых полетит? (и есть ли дети — укажите их возраст)",
	models.SlotStars:       "Какой уровень отеля предпочитаете — 5 звёзд всё включено или рассмотрим варианты?",
	models.SlotMeal:        "Какой тип питания: всё включено (AI), полупансион (HB) или только завтраки (BB)?",
}

// questionFor picks the question for a slot. The date question specializes
// to a day question when the month is already known; the child-age question
// adapts to the number of children waiting for ages.
func questionFor(slot models.Slot, slots models.TripSlots) string {
	switch slot {
	case models.SlotDateStart:
		if slots.DatePrecision == models.PrecisionMonth && !slots.DateStart.IsZero() {
			return "Какого числа примерно планируете вылет?"
		}
	case models.SlotChildAges:
		if slots.ChildrenPending == 1 {
			return "Сколько лет ребёнку? Это важно для точного расчёта цены."
		}
		return fmt.Sprintf("Укажите возраст каждого ребёнка (%d чел.). Это важно для расчёта цены.", slots.ChildrenPending)
	}
	if q, ok := slotQuestions[slot]; ok {
		return q
	}
	return "Уточните, пожалуйста?"
}

// recapLine summarizes the filled slots: "Турция, из Москвы, на 15.06, 7
// ночей, 2 взр + 1 дет". An empty string means nothing is filled yet.
func recapLine(slots models.TripSlots) string {
	var parts []string
	if slots.Destination != "" {
		parts = append(parts, slots.Destination)
	}
	if slots.Departure != "" {
		parts = append(parts, "из "+slots.Departure)
	}
	if slots.HasDate() {
		parts = append(parts, "на "+slots.DateStart.Format("02.01"))
	}
	if slots.Nights > 0 {
		parts = append(parts, fmt.Sprintf("%d ночей", slots.Nights))
	}
	if slots.Adults > 0 {
		pax := fmt.Sprintf("%d взр", slots.Adults)
		if kids := len(slots.ChildrenAges) + slots.ChildrenPending; kids > 0 {
			pax += fmt.Sprintf(" + %d дет", kids)
		}
		parts = append(parts, pax)
	}
	return strings.Join(parts, ", ")
}

// confirmationSummary renders the pre-search parameter card.
func confirmationSummary(slots models.TripSlots) string {
	dateStr := "?"
	if !slots.DateStart.IsZero() {
		dateStr = slots.DateStart.Format("02.01.2006")
	}
	pax := fmt.Sprintf("%d взрослых", slots.Adults)
	if len(slots.ChildrenAges) > 0 {
		ages := make([]string, len(slots.ChildrenAges))
		for i, a := range slots.ChildrenAges {
			ages[i] = fmt.Sprintf("%d", a)
		}
		pax += fmt.Sprintf(" + дети (%s лет)", strings.Join(ages, ", "))
	}

	var b strings.Builder
	b.WriteString("📋 **Параметры поиска:**\n")
	fmt.Fprintf(&b, "• Направление: %s\n", slots.Destination)
	fmt.Fprintf(&b, "• Вылет из: %s\n", slots.Departure)
	fmt.Fprintf(&b, "• Дата: %s\n", dateStr)
	fmt.Fprintf(&b, "• Длительность: %d ночей\n", slots.Nights)
	fmt.Fprintf(&b, "• Туристы: %s\n", pax)
	if slots.Stars > 0 {
		fmt.Fprintf(&b, "• Отель: %d★\n", slots.Stars)
	}
	if slots.Meal != "" {
		fmt.Fprintf(&b, "• Питание: %s\n", slots.Meal.Title())
	}
	if slots.HotelName != "" {
		fmt.Fprintf(&b, "• Отель: %s\n", slots.HotelName)
	}
	b.WriteString("\n✅ Ищу туры по этим параметрам...")
	return b.String()
}

// validation messages, joined under one header
const validationHeader = "Обнаружены ошибки:\n• "

const (
	errDatePast     = "Дата вылета не может быть в прошлом"
	errDateTooFar   = "Бронирование возможно максимум на год вперёд"
	errNightsRange  = "Количество ночей должно быть от 1 до 30"
	errAdultsNeeded = "Минимум 1 взрослый"
	errChildAge     = "Возраст ребёнка должен быть от 0 до 17 лет"
)

func validationReply(errs []string) string {
	return validationHeader + strings.Join(errs, "\n• ")
}

// escalationText is the oversized-group hand-off message.
func escalationText(totalPax int) string {
	return fmt.Sprintf(
		"📞 **Требуется помощь менеджера**\n\n"+
			"Для групп от 7 человек (у вас %d) мы подбираем специальные условия и групповые скидки.\n\n"+
			"Пожалуйста:\n"+
			"• Оставьте номер телефона для обратного звонка\n"+
			"• Или позвоните нам: **+7 (495) XXX-XX-XX**\n\n"+
			"Менеджер свяжется с вами в течение 15 минут в рабочее время.",
		totalPax)
}

// groupBookingText answers a booking request for an oversized group.
func groupBookingText(totalPax int) string {
	return fmt.Sprintf(
		"Для групп более 6 человек (%d чел.) у нас действуют специальные условия и скидки.\n\n"+
			"Чтобы я мог рассчитать точную стоимость, давайте я передам заявку менеджеру группового бронирования.\n\n"+
			"Напишите Ваш номер телефона, и мы свяжемся с Вами.",
		totalPax)
}

// leadAcceptedText confirms a recorded callback request.
func leadAcceptedText(phone, description string) string {
	return fmt.Sprintf(
		"Спасибо! Заявка принята.\n\nТелефон: %s\nНаправление: %s\n\n"+
			"Менеджер свяжется с Вами в ближайшее время.",
		phone, description)
}

func groupLeadAcceptedText(phone string, totalPax int, description string) string {
	return fmt.Sprintf(
		"Спасибо! Групповая заявка принята.\n\nТелефон: %s\nГруппа: %d человек\nНаправление: %s\n\n"+
			"Менеджер группового бронирования свяжется с Вами в ближайшее время "+
			"для расчёта специальных условий.",
		phone, totalPax, description)
}

// fallbackFirstText offers the three relaxations after a first empty search.
func fallbackFirstText(slots models.TripSlots, altCity string) string {
	dateStr := "указанные даты"
	if !slots.DateStart.IsZero() {
		dateStr = slots.DateStart.Format("02.01")
	}
	return fmt.Sprintf(
		"🔍 На %s подходящих туров не нашлось.\n\n"+
			"**Могу предложить:**\n"+
			"1️⃣ Посмотреть соседние даты (±3 дня)\n"+
			"2️⃣ Попробовать вылет из %s\n"+
			"3️⃣ Убрать фильтр по звёздности/питанию\n\n"+
			"Что выберете?",
		dateStr, altCity)
}

// fallbackSecondText gives up on automatic relaxations.
func fallbackSecondText(country string) string {
	if country == "" {
		country = "выбранную страну"
	}
	return fmt.Sprintf(
		"😔 К сожалению, туров в %s на указанные даты не найдено.\n\n"+
			"**Что можно сделать:**\n"+
			"• Сдвинуть даты на ±5-7 дней\n"+
			"• Попробовать вылет из другого города\n"+
			"• Рассмотреть соседние курорты\n\n"+
			"📞 Или свяжитесь с менеджером — он подберёт индивидуально.",
		country)
}

// presentHeader renders the result announcement above the tour cards.
func presentHeader(slots models.TripSlots, shown, totalFound int) string {
	country := slots.Destination
	if country == "" {
		country = "подборке"
	}
	var header string
	switch {
	case slots.HotTour && slots.Destination == "":
		header = fmt.Sprintf("🔥 Нашёл %d горящих туров со скидками:\n", shown)
	case slots.HotTour:
		header = fmt.Sprintf("🔥 Нашёл %d горящих туров в %s:\n", shown, country)
	case totalFound > shown:
		header = fmt.Sprintf("🏝️ Найдено %d вариантов в %s!\nПоказываю топ-%d. Нажмите «Ещё туры» для дополнительных.\n",
			totalFound, country, shown)
	default:
		header = fmt.Sprintf("🏝️ Нашёл %d вариантов в %s:\n", shown, country)
	}

	var params []string
	if slots.Departure != "" {
		params = append(params, "из "+slots.Departure)
	}
	if !slots.DateStart.IsZero() {
		params = append(params, "с "+slots.DateStart.Format("02.01"))
	}
	if slots.Nights > 0 {
		params = append(params, fmt.Sprintf("%d ночей", slots.Nights))
	}
	if slots.Adults > 0 {
		pax := fmt.Sprintf("%d взр", slots.Adults)
		if kids := len(slots.ChildrenAges) + slots.ChildrenPending; kids > 0 {
			pax += fmt.Sprintf(" + %d дет", kids)
		}
		params = append(params, pax)
	}
	if len(params) > 0 {
		header += "📋 " + strings.Join(params, ", ") + "\n"
	}
	return header
}

// moreOffersHeader announces a follow-up batch.
func moreOffersHeader(count int) string {
	return fmt.Sprintf("Ещё %d вариантов:\n", count)
}

// resolve-failure texts: a name the catalog does not know is re-asked, never
// silently substituted.
func unknownCountryText(name string) string {
	return fmt.Sprintf("К сожалению, не нашёл направление «%s» в каталоге. Уточните, пожалуйста, страну.", name)
}

func unknownDepartureText(name string) string {
	return fmt.Sprintf("Не нашёл город вылета «%s» в списке доступных. Из какого города вам удобно вылетать?", name)
}

func hotelNotFoundText(name string) string {
	return fmt.Sprintf("Не нашёл отель «%s» в каталоге. Проверьте название или напишите, что подойдёт любой отель.", name)
}

func priceChangedNote(price int, currency string) string {
	unit := "₽"
	if currency != "" && currency != "RUB" {
		unit = currency
	}
	return fmt.Sprintf("Обратите внимание: актуальная цена по этому туру — %d %s.\n\n", price, unit)
}
