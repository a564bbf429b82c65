package definition

// Definition documents one raw code of a field.
type Definition struct {
	Code        string `json:"code" yaml:"code"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
}

type table map[string]Definition

func newTable(defs ...Definition) table {
	t := make(table, len(defs))
	for _, d := range defs {
		t[d.Code] = d
	}
	return t
}

var severityTable = newTable(
	Definition{Code: "1", Label: "Minor", Description: "Inconvenience, brief embarrassment or questioning", Color: "#22c55e"},
	Definition{Code: "2", Label: "Moderate", Description: "Lasting social or professional damage", Color: "#eab308"},
	Definition{Code: "3", Label: "Serious", Description: "Job loss, detention, family breakdown", Color: "#f97316"},
	Definition{Code: "4", Label: "Severe", Description: "Physical harm, death or suicide", Color: "#ef4444"},
)

var accusationOriginTable = newTable(
	Definition{Code: "squad_inference", Label: "Squad Inference", Description: "Detectives reasoned their way to the suspect"},
	Definition{Code: "witness_id", Label: "Witness Identification", Description: "A witness picked the person out"},
	Definition{Code: "victim_accusation", Label: "Victim Accusation", Description: "The victim named the person"},
	Definition{Code: "false_report", Label: "False Report", Description: "Someone knowingly made a false accusation"},
	Definition{Code: "anonymous_tip", Label: "Anonymous Tip", Description: "An unattributed tip pointed at the person"},
	Definition{Code: "media_speculation", Label: "Media Speculation", Description: "Press coverage named the person first"},
	Definition{Code: "family_member", Label: "Family Member", Description: "A relative raised the accusation"},
	Definition{Code: "forensic_misread", Label: "Forensic Misread", Description: "Physical evidence was misinterpreted"},
	Definition{Code: "prior_record", Label: "Prior Record", Description: "Suspicion based on a criminal history"},
	Definition{Code: "profile_match", Label: "Profile Match", Description: "The person fit a behavioral profile"},
)

var exposureChannelTable = newTable(
	Definition{Code: "none", Label: "Not Exposed", Description: "The accusation stayed private"},
	Definition{Code: "news_media", Label: "News Media", Description: "Newspapers, television or radio"},
	Definition{Code: "social_media", Label: "Social Media", Description: "Online posts and forums"},
	Definition{Code: "community_gossip", Label: "Community Gossip", Description: "Word of mouth among neighbors"},
	Definition{Code: "workplace", Label: "Workplace", Description: "Employer or coworkers were told"},
	Definition{Code: "family", Label: "Family", Description: "Spread within the family"},
	Definition{Code: "public_arrest", Label: "Public Arrest", Description: "Arrested in front of others"},
	Definition{Code: "court_record", Label: "Court Record", Description: "Public filings or a trial"},
)

var exposureWhoToldTable = newTable(
	Definition{Code: "none", Label: "Nobody", Description: "No one exposed the accusation"},
	Definition{Code: "police", Label: "Police", Description: "Detectives or officers disclosed it"},
	Definition{Code: "prosecutor", Label: "Prosecutor", Description: "The district attorney's office disclosed it"},
	Definition{Code: "media", Label: "Media", Description: "Reporters broke the story"},
	Definition{Code: "victim", Label: "Victim", Description: "The accuser went public"},
	Definition{Code: "family", Label: "Family", Description: "A relative spread it"},
	Definition{Code: "neighbor", Label: "Neighbor", Description: "Someone from the community spread it"},
	Definition{Code: "self", Label: "Self", Description: "The accused disclosed it"},
)

var roleInPlotTable = newTable(
	Definition{Code: "red_herring", Label: "Red Herring", Description: "Deliberate misdirection for the audience"},
	Definition{Code: "early_suspect", Label: "Early Suspect", Description: "First person the squad pursues"},
	Definition{Code: "prime_suspect", Label: "Prime Suspect", Description: "Main focus of the investigation before exoneration"},
	Definition{Code: "framed", Label: "Framed", Description: "The real perpetrator planted evidence"},
	Definition{Code: "mistaken_identity", Label: "Mistaken Identity", Description: "Confused with the real perpetrator"},
	Definition{Code: "wrongly_convicted", Label: "Wrongly Convicted", Description: "Convicted before the episode clears them"},
	Definition{Code: "bystander", Label: "Bystander", Description: "Briefly suspected in passing"},
)

var accusedOfTable = newTable(
	Definition{Code: "rape", Label: "Rape", Description: "Rape or attempted rape"},
	Definition{Code: "sexual_assault", Label: "Sexual Assault", Description: "Sexual assault other than rape"},
	Definition{Code: "child_abuse", Label: "Child Abuse", Description: "Physical or sexual abuse of a child"},
	Definition{Code: "child_pornography", Label: "Child Pornography", Description: "Possession or production of abuse material"},
	Definition{Code: "murder", Label: "Murder", Description: "Homicide"},
	Definition{Code: "assault", Label: "Assault", Description: "Non-sexual violence"},
	Definition{Code: "kidnapping", Label: "Kidnapping", Description: "Abduction or unlawful confinement"},
	Definition{Code: "stalking", Label: "Stalking", Description: "Stalking or harassment"},
	Definition{Code: "domestic_violence", Label: "Domestic Violence", Description: "Violence against a partner or relative"},
)

var innocenceStatusTable = newTable(
	Definition{Code: "cleared_on_screen", Label: "Cleared On Screen", Description: "The episode explicitly exonerates the person"},
	Definition{Code: "cleared_later", Label: "Cleared Later", Description: "Exonerated after a conviction or trial"},
	Definition{Code: "implied_innocent", Label: "Implied Innocent", Description: "Innocence follows from the resolution"},
	Definition{Code: "ambiguous", Label: "Ambiguous", Description: "The episode leaves guilt open"},
)

var consequenceCategoryTable = newTable(
	Definition{Code: "none", Label: "No Consequence", Description: "No lasting effect shown"},
	Definition{Code: "reputation", Label: "Reputation Damage", Description: "Standing in the community suffered"},
	Definition{Code: "job_loss", Label: "Job Loss", Description: "Fired or forced to resign"},
	Definition{Code: "detention", Label: "Detention", Description: "Held in custody or jailed"},
	Definition{Code: "family_breakdown", Label: "Family Breakdown", Description: "Divorce, custody loss or estrangement"},
	Definition{Code: "physical_harm", Label: "Physical Harm", Description: "Injured as a result of the accusation"},
	Definition{Code: "death", Label: "Death", Description: "Killed as a result of the accusation"},
	Definition{Code: "suicide", Label: "Suicide", Description: "Took their own life"},
)

var policeConductTable = newTable(
	Definition{Code: "none", Label: "No Misconduct", Description: "Routine, professional treatment"},
	Definition{Code: "verbal_threat", Label: "Verbal Threat", Description: "Threatened with charges, exposure or worse"},
	Definition{Code: "physical_intimidation", Label: "Physical Intimidation", Description: "Cornered, shoved or menaced"},
	Definition{Code: "coercive_interrogation", Label: "Coercive Interrogation", Description: "Pressured toward a confession"},
	Definition{Code: "physical_force", Label: "Physical Force", Description: "Struck or injured by officers"},
	Definition{Code: "public_accusation", Label: "Public Accusation", Description: "Accused in front of others"},
	Definition{Code: "leaked_to_media", Label: "Leaked To Media", Description: "Identity leaked to the press"},
	Definition{Code: "unlawful_search", Label: "Unlawful Search", Description: "Searched without cause or warrant"},
)

var apologyTable = newTable(
	Definition{Code: "none", Label: "No Apology", Description: "No acknowledgement of the harm"},
	Definition{Code: "partial", Label: "Partial Apology", Description: "Grudging or informal acknowledgement"},
	Definition{Code: "formal", Label: "Formal Apology", Description: "Explicit apology to the person"},
)

var prosecutorialConductTable = newTable(
	Definition{Code: "none", Label: "No Misconduct", Description: "Charging decisions were sound"},
	Definition{Code: "overcharging", Label: "Overcharging", Description: "Charges beyond what evidence supported"},
	Definition{Code: "withheld_evidence", Label: "Withheld Evidence", Description: "Exculpatory evidence was not disclosed"},
	Definition{Code: "coerced_plea", Label: "Coerced Plea", Description: "Pressured into a plea deal"},
	Definition{Code: "public_statement", Label: "Public Statement", Description: "Declared guilt to the press"},
	Definition{Code: "pursued_despite_doubt", Label: "Pursued Despite Doubt", Description: "Continued prosecution after doubt emerged"},
)

var flagTable = newTable(
	Definition{Code: "Y", Label: "Yes"},
	Definition{Code: "N", Label: "No"},
	Definition{Code: "Maybe", Label: "Maybe"},
)
