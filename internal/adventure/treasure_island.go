package adventure

const islandArt = `
*******************************************************************************
          |                   |                  |                     |
 _________|________________.=""_;=.______________|_____________________|_______
|                   |  ,-"_,=""     ` + "`" + `"=.|                  |
|___________________|__"=._o` + "`" + `"-._        ` + "`" + `"=.______________|___________________
          |                ` + "`" + `"=._o` + "`" + `"=._      _` + "`" + `"=._                     |
 _________|_____________________:=._o "=._."_.-="'"=.__________________|_______
|                   |    __.--" , ; ` + "`" + `"=._o." ,-"""-._ ".   |
|___________________|_._"  ,. .` + "`" + ` ` + "`" + ` ` + "``" + ` ,  ` + "`" + `"-._"-._   ". '__|___________________
          |           |o` + "`" + `"=._` + "`" + ` , "` + "`" + ` ` + "`" + `; .". ,  "-._"-._; ;              |
 _________|___________| ;` + "`" + `-.o` + "`" + `"=._; ." ` + "`" + ` '` + "`" + `."\ ` + "`" + ` . "-._ /_______________|_______
|                   | |o ;    ` + "`" + `"-.o` + "`" + `"=._` + "``" + `  '` + "`" + ` " ,__.--o;   |
|___________________|_| ;     (#) ` + "`" + `-.o ` + "`" + `"=.` + "`" + `_.--"_o.-; ;___|___________________
____/______/______/___|o;._    "      ` + "`" + `".o|o_.--"    ;o;____/______/______/____
/______/______/______/_"=._o--._        ; | ;        ; ;/______/______/______/_
____/______/______/______/__"=._o--._   ;o|o;     _._;o;____/______/______/____
/______/______/______/______/____"=._o._; | ;_.--"o.--"_/______/______/______/_
____/______/______/______/______/_____"=.o|o_.--""___/______/______/______/____
/______/______/______/______/______/______/______/______/______/______/_____ /
*******************************************************************************
`

const crossroadsArt = `
     _______
    /       \
   |  LEFT   |-----> L
   |         |
   |  RIGHT  |-----> R
    \_______/
`

const lakeArt = `
    ~~~~~    ~~~~~
  ~      ~~~~     ~
 ~  WATER AHEAD  ~~~
 ~    Swim (S)   ~
 ~    or Wait(W) ~
  ~             ~
    ~~~~~    ~~~~~
`

const houseArt = `
   You arrive at a house with 3 doors:

      _______     _______     _______
     | RED   |   | BLUE  |   | YELLOW|
     |_______|   |_______|   |_______|

     R for Red, B for Blue, Y for Yellow
`

const holeArt = `
        _______
       /       \
      |  HOLE!  |
       \_______/
          ||||
        \====/
         \__/
        <<< You fell into a hole! >>>
`

const troutArt = `
               ,--.
           ,--/  /
          /     (
         /       \
    ____/___(*)___\____
   <_________o_________>  <<<<< ATTACKED BY TROUT!
       \_/     \_/
`

const fireArt = `
        (  .      )
     )           (              )
           .    '   .   '  .  '  .
    (    , )       (.   )  (   ',    )
     .' ) ( . )    ,  ( ,     )   ( .
  ). , ( .   (  ) ( , ')  .' (  ,    )
 ( . ) ( , ')  .' ) ( , ')  (   )     <<< BURNED BY FIRE!
`

const beastsArt = `
                 .--.   .-"      "-.   .--.
                / .. \/  .-.  .-.  \ / .. \
               | |  '|  /   \/   \  |'  | |
               \ \__/ \_\_/\__/ /__/  / /
                '.__.'\__/\__/|__.'--'
              <<< EATEN BY BEASTS! >>>
`

const treasureArt = `
        !!! YOU WIN THE TREASURE !!!
`

// GameOverBanner is printed whenever a round is lost.
const GameOverBanner = `
   _____                         ____
  / ____|                       / __ \
 | |  __  __ _ _ __ ___   ___  | |  | |_   _____ _ __
 | | |_ |/ _` + "`" + ` | '_ ` + "`" + ` _ \ / _ \ | |  | \ \ / / _ \ '__|
 | |__| | (_| | | | | | |  __/ | |__| |\ V /  __/ |
  \_____|\__,_|_| |_| |_|\___|  \____/  \_/ \___|_|

                     G A M E   O V E R
`

// WinBanner is printed when the treasure is found.
const WinBanner = `
__   __           __        ___       _
\ \ / /__  _   _  \ \      / (_)_ __ | |
 \ V / _ \| | | |  \ \ /\ / /| | '_ \| |
  | | (_) | |_| |   \ V  V / | | | | |_|
  |_|\___/ \__,_|    \_/\_/  |_|_| |_(_)
`

// TreasureIsland returns the island story: left or right, swim or wait, then pick a door.
func TreasureIsland() Story {
	return Story{
		Title:  "Treasure Island",
		Banner: islandArt,
		Intro: []string{
			"Welcome to Treasure Island.",
			"Your mission is to find the treasure.",
		},
		Start: "crossroads",
		Scenes: map[string]Scene{
			"crossroads": {
				ID:     "crossroads",
				Art:    crossroadsArt,
				Prompt: "Do you go L or R? (Type L for left, or R for right): ",
				Choices: []Choice{
					{Key: "L", Next: "lake"},
					{Key: "R", Outcome: Lose, Art: holeArt, Message: "You fall into a hole. Game Over!"},
				},
			},
			"lake": {
				ID:     "lake",
				Art:    lakeArt,
				Prompt: "Do you swim or wait? (Type S for swim or W for wait): ",
				Choices: []Choice{
					{Key: "S", Outcome: Lose, Art: troutArt, Message: "Attacked by trout. Game Over!"},
					{Key: "W", Next: "house"},
				},
			},
			"house": {
				ID:     "house",
				Art:    houseArt,
				Prompt: "Which door do you enter? (R/B/Y or anything else for other): ",
				Choices: []Choice{
					{Key: "R", Outcome: Lose, Art: fireArt, Message: "Burned by fire. Game Over!"},
					{Key: "B", Outcome: Lose, Art: beastsArt, Message: "Eaten by Beasts. Game Over!"},
					{Key: "Y", Outcome: Win, Art: treasureArt},
				},
				Otherwise: &Choice{Outcome: Lose, Message: "Game Over!"},
			},
		},
	}
}
